package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestUnixTimeUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"integer", `1601289474`, time.Unix(1601289474, 0), false},
		{"fractional", `1601289474.000000000`, time.Unix(1601289474, 0), false},
		{"millis", `1601289474.5`, time.Unix(1601289474, 500_000_000), false},
		{"quoted", `"1601289474"`, time.Unix(1601289474, 0), false},
		{"negative", `-1.5`, time.Unix(-2, 500_000_000), false},
		{"negative below one second", `-0.25`, time.Unix(-1, 750_000_000), false},
		{"negative integer", `-3`, time.Unix(-3, 0), false},
		{"signed fraction", `1.-5`, time.Time{}, true},
		{"null", `null`, time.Time{}, false},
		{"garbage", `"yesterday"`, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got UnixTime
			err := json.Unmarshal([]byte(tt.input), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.input, got.Time, tt.want)
			}
		})
	}
}

func TestUnixTimeMarshal(t *testing.T) {
	tests := []struct {
		in   UnixTime
		want string
	}{
		{UnixTime{}, "null"},
		{Unix(1601289474), "1601289474"},
		{NewUnixTime(time.Unix(1601289474, 250_000_000)), "1601289474.250000000"},
		{NewUnixTime(time.Unix(-2, 500_000_000)), "-1.500000000"},
		{NewUnixTime(time.Unix(-1, 750_000_000)), "-0.250000000"},
	}
	for _, tt := range tests {
		got, err := json.Marshal(tt.in)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != tt.want {
			t.Errorf("Marshal(%v) = %s, want %s", tt.in.Time, got, tt.want)
		}
		var back UnixTime
		if err := json.Unmarshal(got, &back); err != nil || !back.Equal(tt.in.Time) {
			t.Errorf("Unmarshal(%s) = %v, %v, want %v", got, back.Time, err, tt.in.Time)
		}
	}
}

func TestStatusText(t *testing.T) {
	var s Status
	if err := json.Unmarshal([]byte(`"Running"`), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if s != StatusRunning {
		t.Errorf("got %q, want Running", s)
	}
	if err := json.Unmarshal([]byte(`"Paused"`), &s); err == nil {
		t.Error("expected error for unknown status")
	}
	if _, err := json.Marshal(Status("bogus")); err == nil {
		t.Error("expected error marshalling unknown status")
	}
	if !StatusCancelled.Terminal() || StatusRunning.Terminal() {
		t.Error("Terminal() mismatch")
	}
}

func TestJobDecode(t *testing.T) {
	payload := `{
		"id": "399b29ca-ed1b-4052-994c-aef55a39fb4b",
		"status": "Ready",
		"startedAt": null,
		"endedAt": null,
		"exception": null,
		"notebook": {
			"id": "fececd88044240b980f7b392a89b5493c8201e23",
			"path": "blueprint/tests/2.ipynb",
			"commitId": "b1c4d0db22fcd94ae0718319756d979f3c62490a",
			"inputs": ["/A"],
			"outputs": ["/C", "/D", "/F"]
		},
		"previousJobs": ["1424026a-a3e4-4af2-9ac7-b910f98f213d"]
	}`

	var job Job
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if job.Status != StatusReady {
		t.Errorf("Status = %q", job.Status)
	}
	if job.StartedAt != nil || !job.Started().IsZero() {
		t.Errorf("StartedAt = %v, want nil", job.StartedAt)
	}
	if job.Notebook.Name() != "2.ipynb" {
		t.Errorf("Notebook.Name() = %q", job.Notebook.Name())
	}
	if len(job.PreviousJobs) != 1 {
		t.Errorf("PreviousJobs = %v", job.PreviousJobs)
	}
}

func TestCommitDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"nested committer", `{"id":"87fadea","message":"Added note\n\nmore detail\n","committedAt":1601289474.000000000,"committer":{"name":"Ada","email":"ada@example.com"}}`},
		{"flat committer", `{"id":"87fadea","message":"Added note\n\nmore detail\n","committedAt":1601289474.000000000,"committerName":"Ada","committerEmail":"ada@example.com"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Commit
			if err := json.Unmarshal([]byte(tt.payload), &c); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if c.Committer.Name != "Ada" || c.Committer.Email != "ada@example.com" {
				t.Errorf("Committer = %+v", c.Committer)
			}
			if c.Title() != "Added note" {
				t.Errorf("Title() = %q", c.Title())
			}
			if c.Body() != "more detail" {
				t.Errorf("Body() = %q", c.Body())
			}
			if c.CommittedAt.Unix() != 1601289474 {
				t.Errorf("CommittedAt = %v", c.CommittedAt)
			}
			if c.HasChanges() {
				t.Error("HasChanges() = true, want false")
			}
		})
	}
}

func TestRepositoryName(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"https://github.com/statisticsnorway/dapla-notebooks.git", "statisticsnorway/dapla-notebooks"},
		{"git@github.com:statisticsnorway/dapla-blueprint.git", "statisticsnorway/dapla-blueprint"},
		{"owner/repo", "owner/repo"},
		{"", "9bf7399"},
	}
	for _, tt := range tests {
		r := Repository{ID: "9bf7399", URI: tt.uri}
		if got := r.Name(); got != tt.want {
			t.Errorf("Name(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestExecutionPredicates(t *testing.T) {
	job := Job{ID: "j1", Status: StatusReady, Notebook: Notebook{ID: "n1"}}
	tests := []struct {
		name       string
		exec       Execution
		wantStart  bool
		wantCancel bool
	}{
		{"ready with jobs", Execution{Status: StatusReady, Jobs: []Job{job}}, true, false},
		{"ready without jobs", Execution{Status: StatusReady}, false, false},
		{"running", Execution{Status: StatusRunning, Jobs: []Job{job}}, false, true},
		{"done", Execution{Status: StatusDone, Jobs: []Job{job}}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.exec.CanStart(); got != tt.wantStart {
				t.Errorf("CanStart() = %v, want %v", got, tt.wantStart)
			}
			if got := tt.exec.CanCancel(); got != tt.wantCancel {
				t.Errorf("CanCancel() = %v, want %v", got, tt.wantCancel)
			}
		})
	}
}

func TestShortID(t *testing.T) {
	if got := ShortID("a92b824decc7b369180f4c30241e91f149c20e96"); got != "a92b824" {
		t.Errorf("ShortID() = %q", got)
	}
	if got := ShortID("abc"); got != "abc" {
		t.Errorf("ShortID(short) = %q", got)
	}
}
