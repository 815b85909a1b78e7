package api

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	instanceIDOnce sync.Once
	instanceID     string
)

// InstanceID returns the server instance id, assigned once per process. All
// invocations served by the same warm process share it.
func InstanceID() string {
	instanceIDOnce.Do(func() {
		instanceID = uuid.NewString()
	})

	return instanceID
}

// LogContext accumulates the fields of the single access log record emitted
// at the end of an invocation. It is injected into handlers via the
// RouteContext so they can attach free-form entries to the record.
//
// A LogContext belongs to one invocation, but a handler abandoned on
// deadline expiry may still write entries while the dispatcher renders the
// timeout response, so access is synchronized.
type LogContext struct {
	mu     sync.Mutex
	fields logrus.Fields
}

func newLogContext() *LogContext {
	return &LogContext{fields: logrus.Fields{}}
}

// Set attaches a field to the invocation's access log record, replacing any
// previous value for key.
func (l *LogContext) Set(key string, value interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.fields[key] = value
}

// Get returns the current value of a record field, nil when unset.
func (l *LogContext) Get(key string) interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.fields[key]
}

// Fields returns a copy of the accumulated record fields.
func (l *LogContext) Fields() logrus.Fields {
	l.mu.Lock()
	defer l.mu.Unlock()

	fields := make(logrus.Fields, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}

	return fields
}

func (l *LogContext) statusCode() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	code, _ := l.fields["status_code"].(int)
	return code
}
