package payload

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// eventTypePattern validates event names: hierarchical, full-stop delimited, [a-zA-Z0-9_.]
var eventTypePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+(\.[a-zA-Z0-9_]+)*$`)

/* Canonical returns the canonical JSON serialization of an event payload:
 * minified, with object keys in stable (sorted) order at every nesting level.
 *
 * The signer and every verifier must agree on this byte sequence exactly.
 * Any divergence breaks signature verification silently, so canonicalization
 * is an invariant of the wire contract, not an implementation detail.
 */
func Canonical(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	/* Round-tripping through interface{} normalizes whitespace and key order:
	 * encoding/json marshals map keys sorted at every level
	 */
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("unmarshaling payload: %w", err)
	}

	canonical, err := json.Marshal(decoded)
	if err != nil {
		return nil, fmt.Errorf("marshaling canonical payload: %w", err)
	}

	return canonical, nil
}

// ValidateEventType validates an event name format
func ValidateEventType(eventType string) error {
	if eventType == "" {
		return fmt.Errorf("event type cannot be empty")
	}

	// Allow wildcard suffix for subscription filters
	if len(eventType) > 2 && eventType[len(eventType)-2:] == ".*" {
		eventType = eventType[:len(eventType)-2]
	}

	if !eventTypePattern.MatchString(eventType) {
		return fmt.Errorf("event type must be hierarchical and contain only [a-zA-Z0-9_.]: %s", eventType)
	}

	return nil
}
