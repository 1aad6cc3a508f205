package classifier

import (
	"strings"
	"testing"
)

func TestClassifyElection(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("election ", 5)

	if got := Classify(text, ""); got != "politics" {
		t.Fatalf("Classify(election...) = %q, want politics", got)
	}

	scores := Scores(text, "")
	for slug, score := range scores {
		if slug != "politics" && score >= scores["politics"] {
			t.Errorf("category %s score %d is not below politics score %d", slug, score, scores["politics"])
		}
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		title string
		body  string
		want  string
	}{
		{
			name:  "no trigger words",
			title: "A quiet afternoon",
			body:  "Nothing much happened here at all.",
			want:  Uncategorized,
		},
		{
			name:  "empty input",
			title: "",
			body:  "",
			want:  Uncategorized,
		},
		{
			name:  "title only",
			title: "India beat Australia in cricket thriller",
			body:  "",
			want:  "sports",
		},
		{
			name:  "body decides",
			title: "Big day",
			body:  "Sensex and Nifty close higher as investors cheer RBI inflation data",
			want:  "business",
		},
		{
			name:  "tie is uncategorized",
			title: "Cricket",
			body:  "Election",
			want:  Uncategorized,
		},
		{
			name:  "whole words only",
			title: "Said the specialist",
			body:  "The apps and appetite of the party-goers",
			want:  "politics",
		},
		{
			name:  "phrase match",
			title: "Artificial intelligence reshapes newsrooms",
			body:  "",
			want:  "technology",
		},
		{
			name:  "case insensitive",
			title: "BOLLYWOOD ACTOR RELEASES TRAILER",
			body:  "",
			want:  "entertainment",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := Classify(tc.title, tc.body); got != tc.want {
				t.Errorf("Classify(%q, %q) = %q, want %q (scores %v)", tc.title, tc.body, got, tc.want, Scores(tc.title, tc.body))
			}
		})
	}
}

func TestClassifyLongBody(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("hospital doctors vaccine ", 10000) + strings.Repeat("match ", 10)
	if got := Classify("", body); got != "health" {
		t.Fatalf("Classify(long body) = %q, want health", got)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	t.Parallel()

	title := "Government announces cricket league for startups"
	body := "The minister said the tournament will boost the economy"

	first := Classify(title, body)
	for i := 0; i < 50; i++ {
		if got := Classify(title, body); got != first {
			t.Fatalf("Classify is not deterministic: %q vs %q", first, got)
		}
	}
}
