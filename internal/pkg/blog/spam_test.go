package blog

import "testing"

func TestIsLikelySpam(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{content: "Buy cheap viagra now", want: true},
		{content: "VIAGRA!!!", want: true},
		{content: "Best online CASINO games", want: true},
		{content: "you won the Lottery", want: true},
		{content: "Great post, thanks for sharing", want: false},
		{content: "", want: false},
	}

	for _, tt := range tests {
		if got := IsLikelySpam(tt.content); got != tt.want {
			t.Fatalf("IsLikelySpam(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}
