package log

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
)

// Logger provides structured logging backed by zap
type Logger struct {
	zap    *zap.Logger
	sugar  *zap.SugaredLogger
	config Config
}

type requestIDKey struct{}

// ContextWithRequestID attaches a request ID that WithContext and the
// *Context logging methods pick up.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// New creates a new Logger with the given configuration
func New(config Config) *Logger {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "source",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	switch config.Format {
	case FormatText:
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(config.Output.Writer()), config.Level.ToZapLevel())

	var opts []zap.Option
	if config.AddSource {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(1))
	}

	base := zap.New(core, opts...)
	if config.ServiceName != "" {
		base = base.With(zap.String("service", config.ServiceName))
	}
	if config.ServiceVersion != "" {
		base = base.With(zap.String("version", config.ServiceVersion))
	}

	return &Logger{
		zap:    base,
		sugar:  base.Sugar(),
		config: config,
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	z := zap.NewNop()
	return &Logger{zap: z, sugar: z.Sugar(), config: DefaultConfig()}
}

// Default creates a logger with default configuration
func Default() *Logger {
	return New(DefaultConfig())
}

// Development creates a logger with development configuration
func Development() *Logger {
	return New(DevelopmentConfig())
}

// Production creates a logger with production configuration
func Production() *Logger {
	return New(ProductionConfig())
}

func (l *Logger) derive(s *zap.SugaredLogger) *Logger {
	return &Logger{zap: s.Desugar(), sugar: s, config: l.config}
}

// With returns a new Logger with the given key-value pairs added to all log entries
func (l *Logger) With(args ...any) *Logger {
	return l.derive(l.sugar.With(args...))
}

// WithGroup returns a new Logger that nests all subsequent fields under name
func (l *Logger) WithGroup(name string) *Logger {
	z := l.zap.With(zap.Namespace(name))
	return &Logger{zap: z, sugar: z.Sugar(), config: l.config}
}

// WithError adds error details to the logger
// If the error is an AmplyError, it adds error_code and suggestions
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.With(errorFields(err, false)...)
}

// WithContext returns a new Logger carrying the request ID found in ctx
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if id, ok := RequestIDFromContext(ctx); ok {
		return l.With("request_id", id)
	}
	return l
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

// DebugContext logs a debug message with context
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).sugar.Debugw(msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

// InfoContext logs an info message with context
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).sugar.Infow(msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}

// WarnContext logs a warning message with context
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).sugar.Warnw(msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

// ErrorContext logs an error message with context
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).sugar.Errorw(msg, args...)
}

// LogError logs an error with full details
func (l *Logger) LogError(err error) {
	if err == nil {
		return
	}
	l.Error("operation failed", errorFields(err, true)...)
}

// LogErrorContext logs an error with full details and context
func (l *Logger) LogErrorContext(ctx context.Context, err error) {
	if err == nil {
		return
	}
	l.ErrorContext(ctx, "operation failed", errorFields(err, true)...)
}

func errorFields(err error, verbose bool) []any {
	ae, ok := amplyerrors.As(err)
	if !ok {
		return []any{"error", err.Error()}
	}

	var args []any
	if verbose {
		args = []any{"error_code", string(ae.Code), "error_message", ae.Message}
	} else {
		args = []any{"error", ae.Message, "error_code", string(ae.Code)}
	}
	if ae.Field != "" {
		args = append(args, "field", ae.Field)
	}
	if len(ae.Suggestions) > 0 {
		args = append(args, "suggestions", ae.Suggestions)
	}
	if verbose && ae.DocsURL != "" {
		args = append(args, "docs_url", ae.DocsURL)
	}
	if ae.Cause != nil {
		args = append(args, "cause", ae.Cause.Error())
	}
	return args
}

// Enabled returns whether the logger is enabled for the given level
func (l *Logger) Enabled(_ context.Context, level Level) bool {
	return l.zap.Core().Enabled(level.ToZapLevel())
}

// Zap returns the underlying zap.Logger
func (l *Logger) Zap() *zap.Logger {
	return l.zap
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// Config returns the logger configuration
func (l *Logger) Config() Config {
	return l.config
}
