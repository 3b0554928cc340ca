package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against snap and returns the
// failure messages. An empty slice means all assertions held.
func EvaluateAssertions(snap Snapshot, assertions []Assertion) []string {
	var errs []string

	for i, assertion := range assertions {
		var err error

		if snap.Error != nil && assertion.Type != AssertError {
			err = &AssertionError{
				Type:     assertion.Type,
				Expected: "query to succeed",
				Actual:   fmt.Sprintf("%s: %s", snap.Error.Code, snap.Error.Message),
			}
		} else {
			switch assertion.Type {
			case AssertIDs:
				err = assertIDs(snap, assertion)
			case AssertIDsUnordered:
				err = assertIDsUnordered(snap, assertion)
			case AssertTotal:
				err = assertTotal(snap, assertion)
			case AssertHasMore:
				err = assertHasMore(snap, assertion)
			case AssertGroups:
				err = assertGroups(snap, assertion)
			case AssertError:
				err = assertError(snap, assertion)
			default:
				err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
			}
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}

// assertIDs checks result ids in exact order.
func assertIDs(snap Snapshot, a Assertion) error {
	if slices.Equal(snap.IDs, a.IDs) {
		return nil
	}
	return &AssertionError{
		Type:     AssertIDs,
		Expected: fmt.Sprintf("%v", a.IDs),
		Actual:   fmt.Sprintf("%v", snap.IDs),
	}
}

// assertIDsUnordered checks result ids as a multiset.
func assertIDsUnordered(snap Snapshot, a Assertion) error {
	got, want := slices.Sorted(slices.Values(snap.IDs)), slices.Sorted(slices.Values(a.IDs))
	if slices.Equal(got, want) {
		return nil
	}
	return &AssertionError{
		Type:     AssertIDsUnordered,
		Expected: fmt.Sprintf("%v in any order", want),
		Actual:   fmt.Sprintf("%v", got),
	}
}

func assertTotal(snap Snapshot, a Assertion) error {
	if snap.Total == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTotal,
		Expected: fmt.Sprintf("%d matches", a.Count),
		Actual:   fmt.Sprintf("%d matches", snap.Total),
	}
}

func assertHasMore(snap Snapshot, a Assertion) error {
	if a.Value == nil || snap.HasMore == *a.Value {
		return nil
	}
	return &AssertionError{
		Type:     AssertHasMore,
		Expected: fmt.Sprintf("has_more=%t", *a.Value),
		Actual:   fmt.Sprintf("has_more=%t", snap.HasMore),
	}
}

// assertGroups checks group keys in order and each group's ids in order.
func assertGroups(snap Snapshot, a Assertion) error {
	equal := len(snap.Groups) == len(a.Groups)
	for i := 0; equal && i < len(a.Groups); i++ {
		equal = snap.Groups[i].Key == a.Groups[i].Key && slices.Equal(snap.Groups[i].IDs, a.Groups[i].IDs)
	}
	if equal {
		return nil
	}
	return &AssertionError{
		Type:     AssertGroups,
		Expected: formatGroups(a.Groups),
		Actual:   formatSnapshotGroups(snap.Groups),
	}
}

// assertError checks the failure code, and the field when one is given.
func assertError(snap Snapshot, a Assertion) error {
	if snap.Error == nil {
		return &AssertionError{
			Type:     AssertError,
			Expected: fmt.Sprintf("error %s", a.Code),
			Actual:   "query succeeded",
		}
	}
	if snap.Error.Code != a.Code || (a.Field != "" && snap.Error.Field != a.Field) {
		return &AssertionError{
			Type:     AssertError,
			Expected: fmt.Sprintf("error %s (field=%s)", a.Code, a.Field),
			Actual:   fmt.Sprintf("error %s (field=%s): %s", snap.Error.Code, snap.Error.Field, snap.Error.Message),
		}
	}
	return nil
}

func formatGroups(groups []GroupExpect) string {
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = fmt.Sprintf("%s=%v", g.Key, g.IDs)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatSnapshotGroups(groups []GroupSnapshot) string {
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = fmt.Sprintf("%s=%v", g.Key, g.IDs)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
