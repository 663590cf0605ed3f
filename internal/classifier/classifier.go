package classifier

import "context"

// Classifier scores email titles for transactional relevance. The
// orchestrator calls it once per metadata chunk so implementations can
// batch; title order is preserved in the result.
type Classifier interface {
	Predict(ctx context.Context, titles []string) ([]bool, error)
}
