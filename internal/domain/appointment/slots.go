package appointment

import "github.com/clinicore/clinic-api/pkg/timeutil"

// Slot is one fixed-length candidate booking window, in minutes since
// midnight.
type Slot struct {
	StartMin  int  `json:"-"`
	EndMin    int  `json:"-"`
	Available bool `json:"available"`
}

// SlotView is the wire shape of a slot, with clock-string boundaries in
// the caller's local day.
type SlotView struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

// View formats the slot boundaries for the response.
func (s Slot) View() SlotView {
	return SlotView{
		Start:     timeutil.FormatClock(s.StartMin),
		End:       timeutil.FormatClock(s.EndMin),
		Available: s.Available,
	}
}

// BuildSlots walks one working window emitting consecutive slots of
// exactly length minutes. A slot that would straddle the window end is
// dropped, not truncated. A slot is unavailable when its half-open
// interval overlaps any busy interval.
func BuildSlots(winStart, winEnd, length int, busy [][2]int) []Slot {
	if length <= 0 || winEnd <= winStart {
		return nil
	}
	slots := make([]Slot, 0, (winEnd-winStart)/length)
	for start := winStart; start+length <= winEnd; start += length {
		end := start + length
		s := Slot{StartMin: start, EndMin: end, Available: true}
		for _, b := range busy {
			if Overlaps(start, end, b[0], b[1]) {
				s.Available = false
				break
			}
		}
		slots = append(slots, s)
	}
	return slots
}
