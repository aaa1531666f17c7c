package regex

import "context"

// Submatch is one group of a match in a string subject. Groups that did not
// participate have Offset -1 and an empty Str.
type Submatch struct {
	Offset int
	Str    string
}

// FindSubmatch returns the leftmost match in s, group 0 first, or nil.
// A search that exceeds the step limit counts as no match; use Search to tell
// the two apart.
func (re *Regex) FindSubmatch(s string) []Submatch {
	submatches, _ := re.FindAllSubmatchesContext(context.Background(), s, 1)
	if len(submatches) < 1 {
		return nil
	}
	return submatches[0]
}

// FindAllSubmatches finds up to maxCount successive non-overlapping matches
// in s. To return all matches pass a maxCount of -1. Like FindSubmatch it
// stops quietly at the step limit.
func (re *Regex) FindAllSubmatches(s string, maxCount int) [][]Submatch {
	submatches, _ := re.FindAllSubmatchesContext(context.Background(), s, maxCount)
	return submatches
}

// FindAllSubmatchesContext is FindAllSubmatches with cancellation, returning
// the matches found so far together with the error that stopped the search.
//
// After an empty match the next search starts one byte later, and an empty
// match right where the previous match ended is skipped, so "a*" finds
// "aaa" and not an extra "" at the end of "aaa".
func (re *Regex) FindAllSubmatchesContext(ctx context.Context, s string, maxCount int) ([][]Submatch, error) {
	subject := []byte(s)
	var allSubmatches [][]Submatch

	prevEnd := -1
	for pos := 0; pos <= len(subject); {
		if maxCount != -1 && len(allSubmatches) >= maxCount {
			break
		}

		r, err := re.search(ctx, subject, pos)
		if err != nil {
			return allSubmatches, err
		}
		if r == nil {
			break
		}

		whole := r.Groups[0]
		if whole.Len() > 0 || whole.Start != prevEnd {
			allSubmatches = append(allSubmatches, submatchesOf(s, r))
		}
		prevEnd = whole.End

		if whole.Len() == 0 {
			pos = whole.End + 1
		} else {
			pos = whole.End
		}
	}
	return allSubmatches, nil
}

func submatchesOf(s string, r *Region) []Submatch {
	submatches := make([]Submatch, len(r.Groups))
	for i, g := range r.Groups {
		if !g.IsSet() {
			submatches[i] = Submatch{Offset: -1}
			continue
		}
		submatches[i] = Submatch{Offset: g.Start, Str: s[g.Start:g.End]}
	}
	return submatches
}

// Match reports whether re matches anywhere in b. A search cut short by the
// step limit counts as no match.
func (re *Regex) Match(b []byte) bool {
	r, err := re.Search(b)
	return err == nil && r != nil
}

// MatchString is Match for a string.
func (re *Regex) MatchString(s string) bool {
	return re.FindSubmatch(s) != nil
}
