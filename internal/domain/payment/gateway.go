package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// LocalGateway is a Gateway that mints order references locally instead of
// calling an external provider. It is used when no real gateway is
// configured, so quoting and amount selection stay fully exercisable in
// development and tests.
type LocalGateway struct{}

// CreateOrder returns a locally generated order reference.
func (LocalGateway) CreateOrder(_ context.Context, _ int64, _ string, receipt string) (string, error) {
	if receipt == "" {
		receipt = uuid.New().String()
	}
	return fmt.Sprintf("local_%s", receipt), nil
}
