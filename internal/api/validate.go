package api

import (
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(historyLengths, HistoryResponse{})
	v.RegisterStructValidation(chatAttachment, ChatResponse{})
	v.RegisterStructValidation(legacyShape, LegacyResponse{})
	v.RegisterStructValidation(tradePrices, TradeOrderRequest{})
	return v
}

func historyLengths(sl validator.StructLevel) {
	h := sl.Current().Interface().(HistoryResponse)
	if len(h.Timestamp) != len(h.Equity) {
		sl.ReportError(h.Equity, "equity", "Equity", "len_timestamp", "")
	}
}

func chatAttachment(sl validator.StructLevel) {
	r := sl.Current().Interface().(ChatResponse)
	if r.HasAttachment && (r.Attachment == nil || r.Attachment.Data == "") {
		sl.ReportError(r.Attachment, "attachment", "Attachment", "required_with_has_attachment", "")
	}
}

func legacyShape(sl validator.StructLevel) {
	r := sl.Current().Interface().(LegacyResponse)
	if r.IsChart() && len(r.Config) == 0 {
		sl.ReportError(r.Config, "config", "Config", "required_for_chart", "")
	}
	if !r.IsChart() && r.Metrics == nil {
		sl.ReportError(r.Metrics, "metrics", "Metrics", "required_without_chart", "")
	}
}

// enveloped is satisfied by every response type embedding Envelope.
type enveloped interface {
	appError() error
}

// decode checks the status, unmarshals the body into T, surfaces an embedded
// application error and finally validates the shape.
func decode[T enveloped](resp *resty.Response, endpoint string) (*T, error) {
	return decodeBody[T](resp, resp.Body(), endpoint)
}

func decodeBody[T enveloped](resp *resty.Response, body []byte, endpoint string) (*T, error) {
	if err := CheckResponse(resp); err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &MalformedResponseError{Endpoint: endpoint, Reason: err.Error()}
	}
	if err := out.appError(); err != nil {
		return nil, err
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, &MalformedResponseError{Endpoint: endpoint, Reason: verrs.Error()}
		}
		return nil, &MalformedResponseError{Endpoint: endpoint, Reason: err.Error()}
	}
	return &out, nil
}

// nonFinite matches the bare NaN and Infinity tokens some backends emit for
// missing samples. They are not valid JSON.
var nonFinite = regexp.MustCompile(`([\[,:]\s*)-?(?:NaN|Infinity)\b`)

func sanitizeNonFinite(body []byte) []byte {
	return nonFinite.ReplaceAll(body, []byte("${1}null"))
}
