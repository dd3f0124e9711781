// Package contract is the last line of defense at the external boundary: it
// guarantees the gateway never returns model free-text masquerading as
// structured data.
package contract

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/af-corp/nutrigate/internal/auth"
	"github.com/af-corp/nutrigate/internal/types"
)

// InvalidOutputError reports raw model output that failed the strict JSON
// parse. Raw is echoed to the caller for diagnosis.
type InvalidOutputError struct {
	Raw string
}

func (e *InvalidOutputError) Error() string {
	return "model returned invalid json"
}

// Enforcer validates raw model output and stamps caller metadata onto it.
type Enforcer struct {
	now func() time.Time
}

func NewEnforcer() *Enforcer {
	return &Enforcer{now: time.Now}
}

// NewEnforcerWithClock fixes the timestamp source. Test hook.
func NewEnforcerWithClock(now func() time.Time) *Enforcer {
	return &Enforcer{now: now}
}

// Enforce parses raw as exactly one JSON object: no markdown-fence stripping,
// no partial recovery, no trailing data. On success it defaults
// schema_version to "1.0" (a present value is never overwritten) and always
// overwrites user_id and datetime_utc, since those must reflect the
// authenticated caller and the current time rather than anything the model
// emitted.
func (e *Enforcer) Enforce(raw string, claim *auth.IdentityClaim) (types.StructuredResult, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var result types.StructuredResult
	if err := dec.Decode(&result); err != nil || result == nil {
		return nil, &InvalidOutputError{Raw: raw}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &InvalidOutputError{Raw: raw}
	}

	if _, ok := result["schema_version"]; !ok {
		result["schema_version"] = "1.0"
	}
	result["user_id"] = claim.Subject
	result["datetime_utc"] = e.now().UTC().Format("2006-01-02T15:04:05.000000Z07:00")
	return result, nil
}
