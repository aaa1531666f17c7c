package regex

import (
	"context"
)

// Search finds the leftmost match of re in subject. It returns a nil Region
// and a nil error if there is no match; errors are only returned when the
// search was cut short (ErrStepLimitExceeded).
func (re *Regex) Search(subject []byte) (*Region, error) {
	return re.search(context.Background(), subject, 0)
}

// SearchAt is like Search but only considers matches starting at or after
// start. Assertions still see the bytes before start, so \b and (?m:^) work as
// they would in a search from the beginning. ^ and \A only match at offset 0.
func (re *Regex) SearchAt(subject []byte, start int) (*Region, error) {
	return re.search(context.Background(), subject, start)
}

// SearchContext is like Search but gives up with an error wrapping ErrTimeout
// and the context error once ctx is done.
func (re *Regex) SearchContext(ctx context.Context, subject []byte) (*Region, error) {
	return re.search(ctx, subject, 0)
}

// SearchString is Search for a string subject.
func (re *Regex) SearchString(subject string) (*Region, error) {
	return re.search(context.Background(), []byte(subject), 0)
}

// search tries every offset from start up to and including len(subject), so
// that an empty match at the very end is found too.
func (re *Regex) search(ctx context.Context, subject []byte, start int) (*Region, error) {
	if start < 0 || start > len(subject) {
		return nil, nil
	}

	m := re.machine(ctx, subject)
	defer re.release(m)

	if re.anchored {
		if start != 0 {
			return nil, nil
		}
		return regionOf(m.Run(0))
	}

	for pos := start; pos <= len(subject); pos++ {
		if re.prefilter != nil {
			if pos = re.prefilter.next(subject, pos); pos < 0 {
				return nil, nil
			}
		}

		r, err := regionOf(m.Run(pos))
		if r != nil || err != nil {
			return r, err
		}
	}
	return nil, nil
}

func regionOf(slots []int, err error) (*Region, error) {
	if slots == nil || err != nil {
		return nil, err
	}
	return newRegion(slots), nil
}
