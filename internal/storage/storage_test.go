package storage

import "testing"

func TestAudioLink(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		key    string
		offset float64
		want   string
	}{
		{
			name:   "prefix with trailing slash",
			prefix: "https://cdn.example.com/audio/",
			key:    "240115_a.mp3",
			offset: 0,
			want:   "https://cdn.example.com/audio/240115_a.mp3",
		},
		{
			name:   "prefix without trailing slash",
			prefix: "https://cdn.example.com/audio",
			key:    "240115_a.mp3",
			offset: 0,
			want:   "https://cdn.example.com/audio/240115_a.mp3",
		},
		{
			name:   "offset becomes seek fragment",
			prefix: "https://cdn.example.com/audio/",
			key:    "240115_a.mp3",
			offset: 95.7,
			want:   "https://cdn.example.com/audio/240115_a.mp3#t=95",
		},
		{
			name:   "empty prefix",
			prefix: "",
			key:    "240115_a.mp3",
			offset: 0,
			want:   "240115_a.mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AudioLink(tt.prefix, tt.key, tt.offset); got != tt.want {
				t.Errorf("AudioLink() = %q, want %q", got, tt.want)
			}
		})
	}
}
