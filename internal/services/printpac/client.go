package printpac

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"print-pricing/internal/catalog"
	"print-pricing/internal/enumerator"

	"github.com/go-resty/resty/v2"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

// ErrCombinationNotExist is the vendor's answer for an option set it does not sell.
var ErrCombinationNotExist = errors.New("combination does not exist")

// FetchError is a failed price request for one descriptor.
type FetchError struct {
	Descriptor string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Descriptor, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Descriptor, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client talks to the PrintPac price calculator.
type Client struct {
	baseURL string
	timeout time.Duration
	client  *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json, text/javascript, */*; q=0.01")
	client.SetHeader("User-Agent", userAgent)
	client.SetHeader("X-Requested-With", "XMLHttpRequest")

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  client,
	}
}

// FetchPrices requests the price table of one descriptor and flattens it.
func (c *Client) FetchPrices(ctx context.Context, d enumerator.OptionDescriptor) ([]RawPriceRecord, error) {
	path, form, err := requestFor(d)
	if err != nil {
		return nil, &FetchError{Descriptor: d.Key(), Err: err}
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Origin", c.origin()).
		SetHeader("Referer", c.baseURL+endpoints[d.Category].page).
		SetFormData(form).
		Post(c.baseURL + path)
	if err != nil {
		return nil, &FetchError{Descriptor: d.Key(), Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &FetchError{Descriptor: d.Key(), StatusCode: resp.StatusCode(), Err: fmt.Errorf("unexpected status %s", resp.Status())}
	}

	records, err := ParsePriceTable(d, resp.Body())
	if err != nil {
		return nil, &FetchError{Descriptor: d.Key(), StatusCode: resp.StatusCode(), Err: err}
	}
	return records, nil
}

func (c *Client) origin() string {
	if i := strings.Index(c.baseURL, "://"); i >= 0 {
		if j := strings.Index(c.baseURL[i+3:], "/"); j >= 0 {
			return c.baseURL[:i+3+j]
		}
	}
	return c.baseURL
}

type priceResponse struct {
	Status string `json:"status"`
	TBody  *struct {
		Body json.RawMessage `json:"body"`
	} `json:"tbody"`
}

// ParsePriceTable decodes {"tbody":{"body":{unit:{day:cell}}}}. Seal cells are
// the record itself, sticker cells wrap it under "1".
func ParsePriceTable(d enumerator.OptionDescriptor, body []byte) ([]RawPriceRecord, error) {
	var resp priceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode price response: %w", err)
	}
	if resp.Status != "" && !strings.EqualFold(resp.Status, "ok") {
		return nil, fmt.Errorf("%w: status %s", ErrCombinationNotExist, resp.Status)
	}
	if resp.TBody == nil {
		return nil, ErrCombinationNotExist
	}
	raw := bytes.TrimSpace(resp.TBody.Body)
	if len(raw) == 0 || raw[0] != '{' {
		// empty PHP arrays arrive as []
		return nil, ErrCombinationNotExist
	}

	var table map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("decode price table: %w", err)
	}

	var out []RawPriceRecord
	for _, unitKey := range numericKeys(table) {
		unit, err := strconv.ParseInt(unitKey, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("quantity %q: %w", unitKey, err)
		}
		days := table[unitKey]
		for _, dayKey := range numericKeys(days) {
			day, err := strconv.ParseInt(dayKey, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("lead time %q: %w", dayKey, err)
			}
			rec, err := decodeCell(d.Category, days[dayKey])
			if err != nil {
				return nil, fmt.Errorf("cell %s/%s: %w", unitKey, dayKey, err)
			}
			if !rec.Price.Valid {
				continue
			}
			rec.Unit = unit
			rec.Day = day
			rec.Descriptor = d
			out = append(out, rec)
		}
	}
	if len(out) == 0 {
		return nil, ErrCombinationNotExist
	}
	return out, nil
}

func decodeCell(category catalog.ProductCategory, cell json.RawMessage) (RawPriceRecord, error) {
	var rec RawPriceRecord
	if category == catalog.Seal {
		err := json.Unmarshal(cell, &rec)
		return rec, err
	}
	var wrapped map[string]RawPriceRecord
	if err := json.Unmarshal(cell, &wrapped); err != nil {
		return rec, err
	}
	if r, ok := wrapped["1"]; ok {
		return r, nil
	}
	keys := numericKeys(wrapped)
	if len(keys) == 0 {
		return rec, errors.New("empty cell")
	}
	return wrapped[keys[0]], nil
}

// numericKeys sorts map keys by integer value, falling back to string order.
func numericKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.ParseInt(keys[i], 10, 64)
		b, errB := strconv.ParseInt(keys[j], 10, 64)
		if errA == nil && errB == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}
