package note

import (
	"testing"
	"time"

	"vnotes/internal/errors"
)

func TestDate(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     time.Time
		wantErr  bool
	}{
		{
			name:     "standard prefix",
			filename: "240115_groceries.mp3",
			want:     time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC),
		},
		{
			name:     "end of year",
			filename: "231231_review.mp3",
			want:     time.Date(2023, time.December, 31, 12, 0, 0, 0, time.UTC),
		},
		{
			name:     "no underscore",
			filename: "groceries.mp3",
			wantErr:  true,
		},
		{
			name:     "short prefix",
			filename: "2401_x.mp3",
			wantErr:  true,
		},
		{
			name:     "non numeric prefix",
			filename: "24jan5_x.mp3",
			wantErr:  true,
		},
		{
			name:     "impossible month",
			filename: "241301_x.mp3",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &VoiceNote{Name: tt.filename}
			got, err := n.Date()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Date() succeeded, want error")
				}
				if !errors.Is(err, errors.ErrInvalidRequest) {
					t.Errorf("error code = %v, want INVALID_REQUEST", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Date() error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Date() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	if StatusIngress.String() != "ingress" {
		t.Errorf("StatusIngress.String() = %q", StatusIngress.String())
	}
	if StatusSynced.String() != "synced" {
		t.Errorf("StatusSynced.String() = %q", StatusSynced.String())
	}
	if Status(99).String() != "unknown(99)" {
		t.Errorf("Status(99).String() = %q", Status(99).String())
	}
}
