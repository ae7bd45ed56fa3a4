package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/isseis/go-errpromote/internal/promotion"
)

// logTimeLayout is the timestamp layout of error_log lines.
const logTimeLayout = "02-Jan-2006 15:04:05 MST"

// Report is one observable legacy error handed to the sinks.
type Report struct {
	Event promotion.Event
	// Message is the event message after redaction.
	Message string
	Time    time.Time
}

// DisplayLine formats the report for the display sink:
// "Warning: message in file on line 3".
func (r Report) DisplayLine() string {
	return fmt.Sprintf("%s: %s in %s on line %d", r.Event.Category.Label(), r.Message, r.Event.File, r.Event.Line)
}

// LogLine formats the report for the error_log file:
// "[19-Oct-2026 10:00:00 UTC] PHP Warning:  message in file on line 3".
func (r Report) LogLine() string {
	return fmt.Sprintf("[%s] PHP %s:  %s in %s on line %d",
		r.Time.Format(logTimeLayout), r.Event.Category.Label(), r.Message, r.Event.File, r.Event.Line)
}

// Sink receives observable reports. Implementations must be safe for
// concurrent use.
type Sink interface {
	Name() string
	Write(ctx context.Context, r Report) error
}
