package headers

import (
	"reflect"
	"testing"
)

func TestRemoteMessage(t *testing.T) {
	h := RemoteMessage("AAAA-server-key")

	want := map[string]string{
		"Authorization": "key=AAAA-server-key",
		"Content-Type":  "application/json",
	}
	if !reflect.DeepEqual(h, want) {
		t.Errorf("RemoteMessage = %v, want %v", h, want)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		want    map[string]string
		wantErr bool
	}{
		{
			name:    "colon form",
			entries: []string{"Authorization: key=abc"},
			want:    map[string]string{"Authorization": "key=abc"},
		},
		{
			name:    "equals form keeps equals in value",
			entries: []string{"X-Token=a=b"},
			want:    map[string]string{"X-Token": "a=b"},
		},
		{
			name:    "empty value allowed",
			entries: []string{"X-Empty:"},
			want:    map[string]string{"X-Empty": ""},
		},
		{
			name:    "later entry wins",
			entries: []string{"A: 1", "A: 2"},
			want:    map[string]string{"A": "2"},
		},
		{
			name:    "no entries",
			entries: nil,
			want:    map[string]string{},
		},
		{
			name:    "missing separator",
			entries: []string{"Authorization"},
			wantErr: true,
		},
		{
			name:    "missing name",
			entries: []string{": value"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.entries)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Parse(%q) expected error", tt.entries)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.entries, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.entries, got, tt.want)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := map[string]string{"A": "1", "B": "1"}
	override := map[string]string{"B": "2"}

	got := Merge(base, nil, override)

	if want := map[string]string{"A": "1", "B": "2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Merge = %v, want %v", got, want)
	}
	if base["B"] != "1" {
		t.Error("inputs must not be mutated")
	}
}

func TestNames(t *testing.T) {
	got := Names(map[string]string{"b": "", "A": "", "Content-Type": ""})
	if want := []string{"A", "Content-Type", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names = %v, want %v", got, want)
	}
	if got := Names(nil); len(got) != 0 {
		t.Errorf("Names(nil) = %v, want empty", got)
	}
}

func TestRedact(t *testing.T) {
	in := map[string]string{
		"Authorization": "key=secret",
		"X-Api-Key":     "k",
		"Content-Type":  "application/json",
		"Cookie":        "",
	}

	got := Redact(in)

	want := map[string]string{
		"Authorization": "*****",
		"X-Api-Key":     "*****",
		"Content-Type":  "application/json",
		"Cookie":        "",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Redact = %v, want %v", got, want)
	}
	if in["Authorization"] != "key=secret" {
		t.Error("input must not be mutated")
	}
}
