package usecase

import (
	"context"
	"time"
)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
	Healthy(status map[string]string) bool
}

// HealthProbe reports whether one dependency is reachable.
type HealthProbe func(ctx context.Context) error

type healthUsecase struct {
	probes map[string]HealthProbe
}

// NewHealthUsecase checks every named probe; a nil probe is reported as disabled
func NewHealthUsecase(probes map[string]HealthProbe) HealthUsecase {
	return &healthUsecase{probes: probes}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	result := map[string]string{"status": "ok"}
	for name, probe := range u.probes {
		switch {
		case probe == nil:
			result[name] = "disabled"
		case probe(ctx) != nil:
			result[name] = "down"
			result["status"] = "degraded"
		default:
			result[name] = "up"
		}
	}
	return result
}

func (u *healthUsecase) Healthy(status map[string]string) bool {
	return status["status"] == "ok"
}
