package entities

import "testing"

func sampleSchedule() *Schedule {
	return &Schedule{
		CourseCode: "ANT 1301",
		Section:    "01",
		CRN:        "33038",
		Term:       "Fall 2025",
		SpaceIDs:   []string{"draper 201"},
		Meetings: []MeetingPattern{
			{Day: Monday, StartMinute: 9 * 60, EndMinute: 9*60 + 50},
			{Day: Wednesday, StartMinute: 9 * 60, EndMinute: 9*60 + 50},
			{Day: Friday, StartMinute: 9 * 60, EndMinute: 9*60 + 50},
		},
	}
}

func TestScheduleKeyDeterministic(t *testing.T) {
	a := sampleSchedule()
	b := sampleSchedule()
	// Meeting and room order must not matter.
	b.Meetings = []MeetingPattern{b.Meetings[2], b.Meetings[0], b.Meetings[1]}

	if a.Key() != b.Key() {
		t.Errorf("expected equal keys, got %q vs %q", a.Key(), b.Key())
	}
}

func TestScheduleKeyChangesWithTime(t *testing.T) {
	a := sampleSchedule()
	b := sampleSchedule()
	b.Meetings[0].StartMinute = 10 * 60

	if a.Key() == b.Key() {
		t.Error("expected different keys for different meeting times")
	}
}

func TestPersonKeyPrecedence(t *testing.T) {
	p := &Person{Email: "Jane.Smith@x.edu", BaylorID: "B123"}
	if got := p.Key(); got != "mail|jane.smith@x.edu" {
		t.Errorf("expected email key, got %q", got)
	}

	p.Email = ""
	if got := p.Key(); got != "baylor|b123" {
		t.Errorf("expected baylor key, got %q", got)
	}

	p.BaylorID = ""
	p.ExternalIDs = map[string]string{ExternalIDCLSS: "INS-9"}
	if got := p.Key(); got != "clss|ins-9" {
		t.Errorf("expected clss key, got %q", got)
	}

	p.ExternalIDs = nil
	if got := p.Key(); got != "" {
		t.Errorf("expected empty key for unidentified person, got %q", got)
	}
}

func TestRoomKeyNormalizes(t *testing.T) {
	a := &Room{DisplayName: "Draper  201"}
	b := &Room{DisplayName: "draper 201"}
	if a.Key() != b.Key() {
		t.Errorf("expected equal room keys, got %q vs %q", a.Key(), b.Key())
	}
}

func TestMeetingOverlap(t *testing.T) {
	a := MeetingPattern{Day: Monday, StartMinute: 540, EndMinute: 590}
	b := MeetingPattern{Day: Monday, StartMinute: 570, EndMinute: 620}
	c := MeetingPattern{Day: Monday, StartMinute: 590, EndMinute: 640}
	d := MeetingPattern{Day: Tuesday, StartMinute: 540, EndMinute: 590}

	if !a.Overlaps(b) || !b.Overlaps(a) {
		t.Error("expected 9:00-9:50 and 9:30-10:20 to overlap")
	}
	if a.Overlaps(c) {
		t.Error("expected touching intervals not to overlap")
	}
	if a.Overlaps(d) {
		t.Error("expected different days not to overlap")
	}
}

func TestClockString(t *testing.T) {
	cases := map[int]string{
		0:         "12:00 AM",
		9*60 + 30: "9:30 AM",
		12 * 60:   "12:00 PM",
		13*60 + 5: "1:05 PM",
	}
	for minute, want := range cases {
		if got := ClockString(minute); got != want {
			t.Errorf("ClockString(%d) = %q, want %q", minute, got, want)
		}
	}
}

func TestFromFieldsRoundTrip(t *testing.T) {
	s := sampleSchedule()
	s.InstructorIDs = []string{"p-1"}

	rebuilt, err := FromFields(CollectionSchedules, s.Fields())
	if err != nil {
		t.Fatalf("FromFields failed: %v", err)
	}
	if rebuilt.Key() != s.Key() {
		t.Errorf("round trip changed identity key: %q vs %q", rebuilt.Key(), s.Key())
	}
	if rebuilt.(*Schedule).InstructorIDs[0] != "p-1" {
		t.Error("round trip dropped instructor reference")
	}
}
