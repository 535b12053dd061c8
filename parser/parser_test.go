package parser

import (
	_ "embed"
	"errors"
	"strings"
	"testing"

	"github.com/dhcgn/circuit-maintenance-parser/model"
)

//go:embed test_data/maintenance.ics
var icalData []byte

//go:embed test_data/zayo.html
var zayoHTMLData []byte

//go:embed test_data/aws.txt
var awsTextData []byte

func TestICal_Parse(t *testing.T) {
	got, err := ICal{}.Parse(icalData)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Parse() returned %d records, want 2", len(got))
	}

	first := got[0]
	if first.Provider != "example.com" || first.Account != "137.035999173" || first.MaintenanceID != "WorkOrder-31415" {
		t.Errorf("identity fields = %+v", first)
	}
	if first.Summary != "Maint Note Example, network upgrade" {
		t.Errorf("Summary = %q", first.Summary)
	}
	if first.Organizer != "noone@example.com" {
		t.Errorf("Organizer = %q", first.Organizer)
	}
	if first.Start != 1444464000 || first.End != 1444471200 || first.Stamp != 1444435874 {
		t.Errorf("times = %d/%d/%d", first.Start, first.End, first.Stamp)
	}
	if first.Status != model.StatusTentative || first.Sequence != 1 || first.UID != "42" {
		t.Errorf("status/sequence/uid = %s/%d/%s", first.Status, first.Sequence, first.UID)
	}
	wantCircuits := []model.CircuitImpact{
		{CircuitID: "acme-widgets-as-a-service", Impact: model.ImpactNoImpact},
		{CircuitID: "acme-widgets-as-a-service-2", Impact: model.ImpactNoImpact},
	}
	if len(first.Circuits) != len(wantCircuits) {
		t.Fatalf("Circuits = %+v", first.Circuits)
	}
	for i, c := range wantCircuits {
		if first.Circuits[i] != c {
			t.Errorf("Circuits[%d] = %+v, want %+v", i, first.Circuits[i], c)
		}
	}

	second := got[1]
	if second.MaintenanceID != "WorkOrder-31416" || second.Status != model.StatusConfirmed {
		t.Errorf("second record = %+v", second)
	}
	// Europe/Berlin is UTC+2 in October.
	if second.Start != 1444550400 || second.End != 1444557600 {
		t.Errorf("TZID times = %d/%d", second.Start, second.End)
	}
	if second.Organizer != "noc@example.com" {
		t.Errorf("Organizer = %q", second.Organizer)
	}
}

func TestICal_ParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "no events",
			content: "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n",
			wantErr: ErrNoEvents,
		},
		{
			name:    "not a calendar",
			content: "this is not a calendar",
		},
		{
			name: "missing account",
			content: "BEGIN:VCALENDAR\r\nBEGIN:VEVENT\r\n" +
				"DTSTART:20151010T080000Z\r\nDTEND:20151010T100000Z\r\nDTSTAMP:20151010T001114Z\r\n" +
				"X-MAINTNOTE-PROVIDER:example.com\r\nX-MAINTNOTE-MAINTENANCE-ID:WO-1\r\n" +
				"END:VEVENT\r\nEND:VCALENDAR\r\n",
			wantErr: ErrMissingField,
		},
		{
			name: "unknown status",
			content: "BEGIN:VCALENDAR\r\nBEGIN:VEVENT\r\n" +
				"X-MAINTNOTE-STATUS:MAYBE\r\n" +
				"END:VEVENT\r\nEND:VCALENDAR\r\n",
			wantErr: model.ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ICal{}.Parse([]byte(tt.content))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEmailDate_Parse(t *testing.T) {
	got, err := EmailDate{}.Parse([]byte("Tue, 07 Aug 2018 12:00:00 +0000"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got) != 1 || got[0].Stamp != 1533643200 {
		t.Errorf("Parse() = %+v", got)
	}

	if _, err := (EmailDate{}).Parse([]byte("yesterday")); err == nil {
		t.Error("Expected error for an unparseable date")
	}
}

func TestZayoSubject_Parse(t *testing.T) {
	tests := []struct {
		subject string
		want    model.Status
	}{
		{"***Example Networks Inc***ZAYO TTN-0003456789 MAINTENANCE NOTIFICATION***", model.StatusConfirmed},
		{"***Example Networks Inc***ZAYO TTN-0003456789 START MAINTENANCE NOTIFICATION***", model.StatusInProcess},
		{"***Example Networks Inc***ZAYO TTN-0003456789 COMPLETED MAINTENANCE NOTIFICATION***", model.StatusCompleted},
		{"***Example Networks Inc***ZAYO TTN-0003456789 CANCELLED NOTIFICATION***", model.StatusCancelled},
		{"***Example Networks Inc***ZAYO TTN-0003456789 RESCHEDULE NOTIFICATION***", model.StatusRescheduled},
		{"***Example Networks Inc***ZAYO TTN-0003456789 END OF WINDOW NOTIFICATION***", model.StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			got, err := ZayoSubject{}.Parse([]byte(tt.subject))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got[0].Status != tt.want {
				t.Errorf("Status = %s, want %s", got[0].Status, tt.want)
			}
			if got[0].MaintenanceID != "TTN-0003456789" {
				t.Errorf("MaintenanceID = %q", got[0].MaintenanceID)
			}
		})
	}

	if _, err := (ZayoSubject{}).Parse([]byte("Weekly newsletter")); !errors.Is(err, ErrUnknownSubject) {
		t.Errorf("Parse() error = %v, want %v", err, ErrUnknownSubject)
	}
}

func TestZayoHTML_Parse(t *testing.T) {
	got, err := ZayoHTML{}.Parse(zayoHTMLData)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Parse() returned %d records, want 1", len(got))
	}

	m := got[0]
	if m.MaintenanceID != "TTN-0003456789" {
		t.Errorf("MaintenanceID = %q", m.MaintenanceID)
	}
	if m.Account != "Example Networks Inc" {
		t.Errorf("Account = %q", m.Account)
	}
	if !strings.HasPrefix(m.Summary, "Zayo will implement maintenance") {
		t.Errorf("Summary = %q", m.Summary)
	}
	if m.Start != 1609977660 || m.End != 1609999200 {
		t.Errorf("window = %d/%d, want the first window", m.Start, m.End)
	}

	want := []model.CircuitImpact{
		{CircuitID: "/OGYX/123456/ /ZYO /", Impact: model.ImpactOutage},
		{CircuitID: "/OGYX/123457/ /ZYO /", Impact: model.ImpactNoImpact},
	}
	if len(m.Circuits) != len(want) {
		t.Fatalf("Circuits = %+v", m.Circuits)
	}
	for i, c := range want {
		if m.Circuits[i] != c {
			t.Errorf("Circuits[%d] = %+v, want %+v", i, m.Circuits[i], c)
		}
	}
}

func TestZayoHTML_SharedParagraph(t *testing.T) {
	content := "<p><b>Maintenance Ticket #: </b>TTN-0001<br>" +
		"<b>Customer: </b>ACME<br>" +
		"<b>Reason for Maintenance: </b>Fiber splice repair.<br>" +
		"<b>Maintenance Window: </b>07-Jan-2021 00:01 to 07-Jan-2021 06:00 ( GMT )<br>" +
		"<b>Location of Maintenance: </b>Vero Beach, FL</p>"

	got, err := ZayoHTML{}.Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	m := got[0]
	if m.MaintenanceID != "TTN-0001" || m.Account != "ACME" {
		t.Errorf("MaintenanceID/Account = %q/%q", m.MaintenanceID, m.Account)
	}
	if m.Summary != "Fiber splice repair." {
		t.Errorf("Summary = %q", m.Summary)
	}
	if m.Start != 1609977660 || m.End != 1609999200 {
		t.Errorf("window = %d/%d", m.Start, m.End)
	}
}

func TestZayoHTML_MissingWindow(t *testing.T) {
	content := "<p><b>Maintenance Ticket #:</b> TTN-1</p><p>No window here.</p>"
	if _, err := (ZayoHTML{}).Parse([]byte(content)); !errors.Is(err, ErrNoWindow) {
		t.Errorf("Parse() error = %v, want %v", err, ErrNoWindow)
	}
}

func TestParseZayoWindow(t *testing.T) {
	tests := []struct {
		value     string
		wantStart int64
	}{
		{"07-Jan-2021 00:01 to 07-Jan-2021 06:00 ( GMT )", 1609977660},
		{"2021-01-07 00:01 to 2021-01-07 06:00", 1609977660},
		{"01/07/2021 00:01 to 01/07/2021 06:00 (UTC)", 1609977660},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			start, end, err := parseZayoWindow(tt.value)
			if err != nil {
				t.Fatalf("parseZayoWindow() error = %v", err)
			}
			if start.Unix() != tt.wantStart || end.Unix() != 1609999200 {
				t.Errorf("window = %d/%d", start.Unix(), end.Unix())
			}
		})
	}
}

func TestAWSSubject_Parse(t *testing.T) {
	tests := []string{
		"[AWS Account: 123456789012] AWS Direct Connect Planned Maintenance Notification",
		"[AWS Account ID: 123456789012] AWS Direct Connect Planned Maintenance Notification",
	}
	for _, subject := range tests {
		got, err := AWSSubject{}.Parse([]byte(subject))
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", subject, err)
		}
		if got[0].Account != "123456789012" {
			t.Errorf("Account = %q", got[0].Account)
		}
	}

	if _, err := (AWSSubject{}).Parse([]byte("AWS newsletter")); !errors.Is(err, ErrNoAccount) {
		t.Errorf("Parse() error = %v, want %v", err, ErrNoAccount)
	}
}

func TestAWSText_Parse(t *testing.T) {
	got, err := AWSText{}.Parse(awsTextData)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	m := got[0]
	if m.Start != 1610694000 || m.End != 1610708400 {
		t.Errorf("window = %d/%d", m.Start, m.End)
	}
	if m.Status != model.StatusConfirmed {
		t.Errorf("Status = %s", m.Status)
	}
	if !strings.HasPrefix(m.Summary, "Planned maintenance has been scheduled") {
		t.Errorf("Summary = %q", m.Summary)
	}
	if len(m.Circuits) != 2 || m.Circuits[0].CircuitID != "dxcon-fgabc123" || m.Circuits[1].CircuitID != "dxvif-fgdef456" {
		t.Errorf("Circuits = %+v", m.Circuits)
	}

	again, err := AWSText{}.Parse(awsTextData)
	if err != nil {
		t.Fatal(err)
	}
	if m.MaintenanceID == "" || again[0].MaintenanceID != m.MaintenanceID {
		t.Errorf("maintenance id is not deterministic: %q vs %q", m.MaintenanceID, again[0].MaintenanceID)
	}
}

func TestAWSText_Cancelled(t *testing.T) {
	content := "We would like to inform you that the planned maintenance from " +
		"Fri, 15 Jan 2021 07:00:00 GMT to Fri, 15 Jan 2021 11:00:00 GMT has been cancelled.\n"
	got, err := AWSText{}.Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got[0].Status != model.StatusCancelled {
		t.Errorf("Status = %s, want %s", got[0].Status, model.StatusCancelled)
	}
	if len(got[0].Circuits) != 0 {
		t.Errorf("Circuits = %+v, want none", got[0].Circuits)
	}
}

func TestAWSText_TimeZones(t *testing.T) {
	tests := []struct {
		zone      string
		wantStart int64
		wantErr   error
	}{
		{"GMT", 1610694000, nil},
		{"UTC", 1610694000, nil},
		{"PDT", 1610694000 + 7*3600, nil},
		{"EST", 1610694000 + 5*3600, nil},
		{"XYZ", 0, ErrUnknownZone},
	}

	for _, tt := range tests {
		t.Run(tt.zone, func(t *testing.T) {
			content := "Planned maintenance from Fri, 15 Jan 2021 07:00:00 " + tt.zone +
				" to Fri, 15 Jan 2021 11:00:00 " + tt.zone + ".\n"
			got, err := AWSText{}.Parse([]byte(content))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got[0].Start != tt.wantStart || got[0].End != tt.wantStart+4*3600 {
				t.Errorf("window = %d/%d, want start %d", got[0].Start, got[0].End, tt.wantStart)
			}
		})
	}
}

func TestAWSText_NoWindow(t *testing.T) {
	if _, err := (AWSText{}).Parse([]byte("hello\n")); !errors.Is(err, ErrNoWindow) {
		t.Errorf("Parse() error = %v, want %v", err, ErrNoWindow)
	}
}

func TestRun(t *testing.T) {
	parts := []DataPart{
		{Type: TypeText, Content: []byte("ignored")},
		{Type: TypeEmailDate, Content: []byte("Tue, 07 Aug 2018 12:00:00 +0000")},
	}

	got, err := Run(EmailDate{}, parts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(got) != 1 || got[0].Stamp != 1533643200 {
		t.Errorf("Run() = %+v", got)
	}

	if _, err := Run(ICal{}, parts); !errors.Is(err, ErrNoData) {
		t.Errorf("Run() error = %v, want %v", err, ErrNoData)
	}
}
