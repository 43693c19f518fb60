package instrument

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const maskedValue = "***"

// NewLogger builds the service logger. Records are written as JSON to w and,
// when lp is set, also forwarded to the OTel log pipeline. Attributes named in
// maskFields are redacted, including keys nested in JSON strings and maps.
func NewLogger(w io.Writer, serviceName string, level slog.Level, lp *sdklog.LoggerProvider, maskFields []string) *slog.Logger {
	sinks := fanout{slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		AddSource:   true,
		ReplaceAttr: renameAttr,
	})}
	if lp != nil {
		sinks = append(sinks, otelslog.NewHandler(serviceName, otelslog.WithLoggerProvider(lp)))
	}

	var next slog.Handler = sinks
	if len(sinks) == 1 {
		next = sinks[0]
	}

	return slog.New(&enrichHandler{
		Handler: &maskingHandler{next: next, mask: newFieldMask(maskFields)},
		service: serviceName,
	})
}

func renameAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
	case slog.LevelKey:
		a.Key = "severity"
	case slog.SourceKey:
		src, ok := a.Value.Any().(*slog.Source)
		if !ok {
			return a
		}
		_, rel, found := strings.Cut(src.File, "/internal/")
		if !found {
			return slog.Attr{}
		}
		return slog.String("file", fmt.Sprintf("%s:%d", filepath.Join("internal", rel), src.Line))
	}
	return a
}

// enrichHandler stamps every record with the correlation id and service name.
type enrichHandler struct {
	slog.Handler
	service string
}

func (h *enrichHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &enrichHandler{Handler: h.Handler.WithAttrs(attrs), service: h.service}
}

func (h *enrichHandler) WithGroup(name string) slog.Handler {
	return &enrichHandler{Handler: h.Handler.WithGroup(name), service: h.service}
}

func (h *enrichHandler) Handle(ctx context.Context, r slog.Record) error {
	if cID := GetCorrelationID(ctx); cID != "" {
		r.AddAttrs(slog.String("_cID", cID))
	}
	if h.service != "" {
		r.AddAttrs(slog.String("service", h.service))
	}
	return h.Handler.Handle(ctx, r)
}

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

type maskingHandler struct {
	next slog.Handler
	mask fieldMask
}

func (h *maskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *maskingHandler) Handle(ctx context.Context, r slog.Record) error {
	if len(h.mask) == 0 {
		return h.next.Handle(ctx, r)
	}

	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.mask.attr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *maskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.mask.attr(a)
	}
	return &maskingHandler{next: h.next.WithAttrs(masked), mask: h.mask}
}

func (h *maskingHandler) WithGroup(name string) slog.Handler {
	return &maskingHandler{next: h.next.WithGroup(name), mask: h.mask}
}

// fieldMask is a set of lower-cased attribute keys whose values are redacted.
type fieldMask map[string]struct{}

func newFieldMask(fields []string) fieldMask {
	m := fieldMask{}
	for _, field := range fields {
		if field = strings.ToLower(strings.TrimSpace(field)); field != "" {
			m[field] = struct{}{}
		}
	}
	return m
}

func (m fieldMask) hides(key string) bool {
	_, ok := m[strings.ToLower(key)]
	return ok
}

func (m fieldMask) attr(a slog.Attr) slog.Attr {
	if m.hides(a.Key) {
		return slog.String(a.Key, maskedValue)
	}

	switch a.Value.Kind() {
	case slog.KindGroup:
		group := a.Value.Group()
		masked := make([]slog.Attr, len(group))
		for i, ga := range group {
			masked[i] = m.attr(ga)
		}
		a.Value = slog.GroupValue(masked...)
	case slog.KindString:
		s := a.Value.String()
		if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
			if masked, ok := m.jsonText([]byte(s)); ok {
				a.Value = slog.StringValue(masked)
			}
		}
	case slog.KindAny:
		switch v := a.Value.Any().(type) {
		case map[string]any, []any:
			a.Value = slog.AnyValue(m.value(v))
		case map[string]string:
			generic := make(map[string]any, len(v))
			for k, s := range v {
				generic[k] = s
			}
			a.Value = slog.AnyValue(m.value(generic))
		case []byte:
			if masked, ok := m.jsonText(v); ok {
				a.Value = slog.StringValue(masked)
			}
		}
	}

	return a
}

func (m fieldMask) value(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if m.hides(k) {
				out[k] = maskedValue
				continue
			}
			out[k] = m.value(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = m.value(item)
		}
		return out
	default:
		return v
	}
}

func (m fieldMask) jsonText(raw []byte) (string, bool) {
	var decoded any
	if len(raw) == 0 || json.Unmarshal(raw, &decoded) != nil {
		return "", false
	}
	out, err := json.Marshal(m.value(decoded))
	if err != nil {
		return "", false
	}
	return string(out), true
}
