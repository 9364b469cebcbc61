package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldSubsystem  = "subsystem"
	FieldRequestID  = "request_id"
	FieldSessionID  = "session_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldReferer    = "referer"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldSource     = "source"
	FieldAlertID    = "alert_id"
	FieldAlertKind  = "alert_kind"
	FieldSeverity   = "severity"
	FieldRecord     = "record"
	FieldRecordID   = "record_id"
	FieldCount      = "count"
	FieldUnread     = "unread"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentRefresh  = "refresh"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentNotify   = "notify"
	ComponentCache    = "cache"
	ComponentSecurity = "security"
	ComponentTrace    = "trace"
	ComponentBackend  = "backend"
	ComponentCLI      = "cli"
)

// Operations defines standard operation names
const (
	OpRefresh  = "refresh"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpNotify   = "notify"
	OpValidate = "validate"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithSource names the finance input a record or failure came from.
func (f LogFields) WithSource(source string) LogFields {
	f[FieldSource] = source
	return f
}

// WithPeriod adds the year and month being processed.
func (f LogFields) WithPeriod(year, month int) LogFields {
	f[FieldYear] = year
	f[FieldMonth] = month
	return f
}

// WithClientIP adds client IP field
func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithAlert adds alert identification fields
func (f LogFields) WithAlert(id, kind, severity string) LogFields {
	f[FieldAlertID] = id
	f[FieldAlertKind] = kind
	f[FieldSeverity] = severity
	return f
}

// WithRecord identifies an input record, e.g. a budget or a bill.
func (f LogFields) WithRecord(record string, id int64) LogFields {
	f[FieldRecord] = record
	f[FieldRecordID] = id
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query, userAgent, referer string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	f[FieldReferer] = referer
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
