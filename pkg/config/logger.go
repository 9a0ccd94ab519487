package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap with otelzap so log lines carry trace_id/span_id, and optionally
// pushes Info and Error entries to Grafana Loki.
type Logger struct {
	*otelzap.Logger
	serviceName string
	lokiURL     string
	httpClient  *http.Client
}

type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

func NewLogger(cfg *AppConfig) (*Logger, error) {
	zapConfig := zap.NewProductionConfig()

	if !cfg.IsProduction() {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"

	zapLogger, err := zapConfig.Build(zap.Fields(zap.String("service", cfg.ServiceName)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	return newLogger(zapLogger, cfg.ServiceName, cfg.LokiURL), nil
}

// NewNopLogger discards everything; used by tests.
func NewNopLogger() *Logger {
	return WrapLogger(zap.NewNop(), "test")
}

// WrapLogger adds trace correlation to an existing zap logger, without Loki shipping.
func WrapLogger(zapLogger *zap.Logger, serviceName string) *Logger {
	return newLogger(zapLogger, serviceName, "")
}

func newLogger(zapLogger *zap.Logger, serviceName, lokiURL string) *Logger {
	l := &Logger{
		Logger:      otelzap.New(zapLogger),
		serviceName: serviceName,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
	}

	if lokiURL != "" {
		l.lokiURL = strings.TrimRight(lokiURL, "/") + "/loki/api/v1/push"
	}

	return l
}

func (l *Logger) Sync() error {
	return l.Logger.Sync()
}

func (l *Logger) InfoWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithTrace(ctx, zapcore.InfoLevel, msg, fields...)
}

func (l *Logger) WarnWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithTrace(ctx, zapcore.WarnLevel, msg, fields...)
}

func (l *Logger) ErrorWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithTrace(ctx, zapcore.ErrorLevel, msg, fields...)
}

func (l *Logger) logWithTrace(ctx context.Context, level zapcore.Level, msg string, fields ...zap.Field) {
	switch level {
	case zapcore.ErrorLevel:
		l.Logger.Ctx(ctx).Error(msg, fields...)
	case zapcore.WarnLevel:
		l.Logger.Ctx(ctx).Warn(msg, fields...)
	default:
		l.Logger.Ctx(ctx).Info(msg, fields...)
	}

	if l.lokiURL == "" {
		return
	}

	entry := l.lokiEntry(ctx, level, msg, fields)
	go l.push(entry)
}

func (l *Logger) lokiEntry(ctx context.Context, level zapcore.Level, msg string, fields []zap.Field) lokiPush {
	encoder := zapcore.NewMapObjectEncoder()
	for _, field := range fields {
		field.AddTo(encoder)
	}

	line := encoder.Fields
	line["timestamp"] = time.Now().Format(time.RFC3339Nano)
	line["level"] = level.String()
	line["message"] = msg
	line["service"] = l.serviceName

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		line["trace_id"] = span.SpanContext().TraceID().String()
		line["span_id"] = span.SpanContext().SpanID().String()
	}

	body, err := json.Marshal(line)
	if err != nil {
		body = []byte(fmt.Sprintf(`{"message":%q}`, msg))
	}

	return lokiPush{
		Streams: []lokiStream{
			{
				Stream: map[string]string{
					"service": l.serviceName,
					"level":   level.String(),
				},
				Values: [][]string{
					{fmt.Sprintf("%d", time.Now().UnixNano()), string(body)},
				},
			},
		},
	}
}

func (l *Logger) push(entry lokiPush) {
	body, err := json.Marshal(entry)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, l.lokiURL, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	io.Copy(io.Discard, resp.Body)
}
