package notion

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jomei/notionapi"

	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/domain"
)

const pageSize = 100

var _ domain.TableClient = (*Client)(nil)

type Option func(*options)

type options struct {
	httpClient *http.Client
}

func WithHTTPClient(h *http.Client) Option {
	return func(o *options) {
		o.httpClient = h
	}
}

// Client maps table rows onto Notion database pages.
type Client struct {
	api *notionapi.Client
}

func NewClient(token string, opts ...Option) *Client {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var apiOpts []notionapi.ClientOption
	if o.httpClient != nil {
		apiOpts = append(apiOpts, notionapi.WithHTTPClient(o.httpClient))
	}

	return &Client{api: notionapi.NewClient(notionapi.Token(token), apiOpts...)}
}

func (c *Client) Query(ctx context.Context, tableID string, filter domain.Filter) ([]domain.Row, error) {
	nf, err := BuildFilter(filter)
	if err != nil {
		return nil, err
	}

	req := &notionapi.DatabaseQueryRequest{Filter: nf, PageSize: pageSize}

	var rows []domain.Row
	for {
		resp, err := c.api.Database.Query(ctx, notionapi.DatabaseID(tableID), req)
		if err != nil {
			return nil, fmt.Errorf("notion: query %s: %w", tableID, err)
		}
		for _, page := range resp.Results {
			rows = append(rows, RowFromPage(page))
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return rows, nil
		}
		req.StartCursor = resp.NextCursor
	}
}

func (c *Client) Create(ctx context.Context, tableID string, props domain.Properties) error {
	np, err := ToNotionProperties(props)
	if err != nil {
		return err
	}

	_, err = c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(tableID),
		},
		Properties: np,
	})
	if err != nil {
		return fmt.Errorf("notion: create in %s: %w", tableID, err)
	}
	return nil
}

func (c *Client) Update(ctx context.Context, rowID string, props domain.Properties) error {
	np, err := ToNotionProperties(props)
	if err != nil {
		return err
	}

	_, err = c.api.Page.Update(ctx, notionapi.PageID(rowID), &notionapi.PageUpdateRequest{Properties: np})
	if err != nil {
		return fmt.Errorf("notion: update %s: %w", rowID, err)
	}
	return nil
}

// BuildFilter ANDs every condition. A single condition is sent bare.
func BuildFilter(filter domain.Filter) (notionapi.Filter, error) {
	if len(filter) == 0 {
		return nil, nil
	}

	parts := make(notionapi.AndCompoundFilter, 0, len(filter))
	for _, cond := range filter {
		pf, err := propertyFilter(cond)
		if err != nil {
			return nil, err
		}
		parts = append(parts, pf)
	}

	if len(parts) == 1 {
		return parts[0], nil
	}
	return parts, nil
}

func propertyFilter(cond domain.Condition) (notionapi.Filter, error) {
	pf := notionapi.PropertyFilter{Property: cond.Property}

	switch cond.Value.Type {
	case domain.PropertyDate:
		if cond.Operator != domain.OpEquals {
			break
		}
		return newDateEqualsFilter(cond.Property, cond.Value.Date), nil

	case domain.PropertyTitle:
		// Title properties accept rich_text conditions.
		text := textCondition(cond)
		if text == nil {
			break
		}
		pf.RichText = text
		return pf, nil

	case domain.PropertySelect:
		sel := &notionapi.SelectFilterCondition{}
		switch cond.Operator {
		case domain.OpEquals:
			sel.Equals = cond.Value.Text
		case domain.OpDoesNotEqual:
			sel.DoesNotEqual = cond.Value.Text
		case domain.OpIsNotEmpty:
			sel.IsNotEmpty = true
		default:
			return nil, fmt.Errorf("%w: %s on select %q", domain.ErrUnsupportedProperty, cond.Operator, cond.Property)
		}
		pf.Select = sel
		return pf, nil
	}

	return nil, fmt.Errorf("%w: %s on %s %q", domain.ErrUnsupportedProperty, cond.Operator, cond.Value.Type, cond.Property)
}

func textCondition(cond domain.Condition) *notionapi.TextFilterCondition {
	switch cond.Operator {
	case domain.OpEquals:
		return &notionapi.TextFilterCondition{Equals: cond.Value.Text}
	case domain.OpDoesNotEqual:
		return &notionapi.TextFilterCondition{DoesNotEqual: cond.Value.Text}
	case domain.OpIsNotEmpty:
		return &notionapi.TextFilterCondition{IsNotEmpty: true}
	}
	return nil
}

func ToNotionProperties(props domain.Properties) (notionapi.Properties, error) {
	out := make(notionapi.Properties, len(props))

	for name, value := range props {
		switch value.Type {
		case domain.PropertyDate:
			out[name] = newDateProperty(value.Date)
		case domain.PropertyNumber:
			out[name] = notionapi.NumberProperty{
				Type:   notionapi.PropertyTypeNumber,
				Number: value.Number,
			}
		case domain.PropertyCheckbox:
			out[name] = notionapi.CheckboxProperty{
				Type:     notionapi.PropertyTypeCheckbox,
				Checkbox: value.Checkbox,
			}
		case domain.PropertyTitle:
			out[name] = notionapi.TitleProperty{
				Type: notionapi.PropertyTypeTitle,
				Title: []notionapi.RichText{{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{Content: value.Text},
				}},
			}
		case domain.PropertySelect:
			out[name] = notionapi.SelectProperty{
				Type:   notionapi.PropertyTypeSelect,
				Select: notionapi.Option{Name: value.Text},
			}
		default:
			return nil, fmt.Errorf("%w: %s %q", domain.ErrUnsupportedProperty, value.Type, name)
		}
	}

	return out, nil
}

// RowFromPage keeps the property kinds the sync reads and drops the rest.
func RowFromPage(page notionapi.Page) domain.Row {
	row := domain.Row{ID: string(page.ID), Properties: make(domain.Properties)}

	for name, prop := range page.Properties {
		if value, ok := propertyValue(prop); ok {
			row.Properties[name] = value
		}
	}
	return row
}

func propertyValue(prop notionapi.Property) (domain.PropertyValue, bool) {
	switch p := prop.(type) {
	case *notionapi.DateProperty:
		return dateValue(p.Date)
	case notionapi.DateProperty:
		return dateValue(p.Date)
	case *notionapi.NumberProperty:
		return domain.NumberValue(p.Number), true
	case notionapi.NumberProperty:
		return domain.NumberValue(p.Number), true
	case *notionapi.CheckboxProperty:
		return domain.CheckboxValue(p.Checkbox), true
	case notionapi.CheckboxProperty:
		return domain.CheckboxValue(p.Checkbox), true
	case *notionapi.TitleProperty:
		return domain.TitleValue(plainText(p.Title)), true
	case notionapi.TitleProperty:
		return domain.TitleValue(plainText(p.Title)), true
	case *notionapi.SelectProperty:
		return domain.SelectValue(p.Select.Name), true
	case notionapi.SelectProperty:
		return domain.SelectValue(p.Select.Name), true
	}
	return domain.PropertyValue{}, false
}

func dateValue(obj *notionapi.DateObject) (domain.PropertyValue, bool) {
	if obj == nil || obj.Start == nil {
		return domain.PropertyValue{}, false
	}
	return domain.DateValue(time.Time(*obj.Start)), true
}

func plainText(parts []notionapi.RichText) string {
	var out string
	for _, part := range parts {
		switch {
		case part.PlainText != "":
			out += part.PlainText
		case part.Text != nil:
			out += part.Text.Content
		}
	}
	return out
}
