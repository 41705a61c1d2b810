package pagination

import "testing"

func TestFromValuesDefaults(t *testing.T) {
	cases := []struct {
		page, limit string
		wantPage    int
		wantLimit   int
	}{
		{"", "", 1, 10},
		{"3", "25", 3, 25},
		{"0", "0", 1, 10},
		{"-2", "-5", 1, 10},
		{"abc", "xyz", 1, 10},
		{"2", "500", 2, MaxLimit},
	}
	for _, tc := range cases {
		p := FromValues(tc.page, tc.limit)
		if p.Page != tc.wantPage || p.Limit != tc.wantLimit {
			t.Errorf("FromValues(%q, %q) = %+v, want page=%d limit=%d",
				tc.page, tc.limit, p, tc.wantPage, tc.wantLimit)
		}
	}
}

func TestOffset(t *testing.T) {
	p := Params{Page: 4, Limit: 10}
	if p.Offset() != 30 {
		t.Errorf("offset = %d, want 30", p.Offset())
	}
}

func TestNewMeta(t *testing.T) {
	m := NewMeta(Params{Page: 2, Limit: 10}, 35)
	if m.TotalPages != 4 {
		t.Errorf("total pages = %d, want 4", m.TotalPages)
	}
	m = NewMeta(Params{Page: 1, Limit: 10}, 30)
	if m.TotalPages != 3 {
		t.Errorf("total pages = %d, want 3", m.TotalPages)
	}
	m = NewMeta(Params{Page: 1, Limit: 10}, 0)
	if m.TotalPages != 0 || m.Total != 0 {
		t.Errorf("empty meta = %+v", m)
	}
}
