package chi

import (
	"context"

	"github.com/kailas-cloud/bookclub/internal/domain/answer"
	"github.com/kailas-cloud/bookclub/internal/domain/category"
	answeruc "github.com/kailas-cloud/bookclub/internal/usecase/answer"
	"github.com/kailas-cloud/bookclub/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/bookclub/internal/usecase/health"
)

// Answerer runs the answer pipeline.
type Answerer interface {
	Answer(ctx context.Context, req answeruc.Request) (answer.Record, error)
}

// Catalog lists categories, authors and models.
type Catalog interface {
	Categories() []category.Category
	Authors(ctx context.Context, nameOrCode string) ([]string, error)
	Models() catalog.Models
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
