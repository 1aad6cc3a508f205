package model

import "time"

// Исход обработки одного кандидата
type OutcomeKind int

const (
	OutcomeAccepted OutcomeKind = iota
	OutcomeDuplicate
	OutcomeSkipped
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type Outcome struct {
	Kind  OutcomeKind
	Title string
	Slug  string
	// Причина для Skipped и Failed
	Reason error
	// Заполнено только для Accepted
	Article *Article
}

func Accepted(article Article) Outcome {
	return Outcome{Kind: OutcomeAccepted, Title: article.Title, Slug: article.Slug, Article: &article}
}

func Duplicate(title, slug string) Outcome {
	return Outcome{Kind: OutcomeDuplicate, Title: title, Slug: slug}
}

func Skipped(title string, reason error) Outcome {
	return Outcome{Kind: OutcomeSkipped, Title: title, Reason: reason}
}

func Failed(title, slug string, reason error) Outcome {
	return Outcome{Kind: OutcomeFailed, Title: title, Slug: slug, Reason: reason}
}

type CandidateFailure struct {
	Title  string
	Slug   string
	Reason string
}

// Итог одного запуска пайплайна. Живет только в рамках одного вызова
type IngestionRun struct {
	Fetched   int
	Accepted  int
	Duplicate int
	Skipped   int
	Failed    int
	Failures  []CandidateFailure
	Created   []Article

	StartedAt  time.Time
	FinishedAt time.Time
}

// Добавляет исход кандидата в сводку
func (r *IngestionRun) Add(o Outcome) {
	switch o.Kind {
	case OutcomeAccepted:
		r.Accepted++
		if o.Article != nil {
			r.Created = append(r.Created, *o.Article)
		}
	case OutcomeDuplicate:
		r.Duplicate++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
		failure := CandidateFailure{Title: o.Title, Slug: o.Slug}
		if o.Reason != nil {
			failure.Reason = o.Reason.Error()
		}
		r.Failures = append(r.Failures, failure)
	}
}
