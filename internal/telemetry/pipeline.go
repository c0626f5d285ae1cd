package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Pipeline counters. Instruments are created lazily on first use so Init
// has already installed the real (or no-op) meter provider by then.
var (
	instrumentsOnce  sync.Once
	entitiesParsed   metric.Int64Counter
	projectsExported metric.Int64Counter
	issuesExported   metric.Int64Counter
	usersExported    metric.Int64Counter
)

func initInstruments() {
	m := Meter("")
	entitiesParsed, _ = m.Int64Counter("jirasieve.entities.parsed",
		metric.WithDescription("Entity records parsed from the dump"))
	projectsExported, _ = m.Int64Counter("jirasieve.projects.exported",
		metric.WithDescription("Project documents assembled"))
	issuesExported, _ = m.Int64Counter("jirasieve.issues.exported",
		metric.WithDescription("Issue records denormalized"))
	usersExported, _ = m.Int64Counter("jirasieve.users.exported",
		metric.WithDescription("User records exported"))
}

// CountEntities records n parsed entity records of the given type.
func CountEntities(ctx context.Context, tag string, n int) {
	instrumentsOnce.Do(initInstruments)
	entitiesParsed.Add(ctx, int64(n), metric.WithAttributes(attribute.String("entity.tag", tag)))
}

// CountProject records one assembled project document with its issue count.
func CountProject(ctx context.Context, key string, issues int) {
	instrumentsOnce.Do(initInstruments)
	projectsExported.Add(ctx, 1, metric.WithAttributes(attribute.String("project.key", key)))
	issuesExported.Add(ctx, int64(issues), metric.WithAttributes(attribute.String("project.key", key)))
}

// CountUsers records n exported user records.
func CountUsers(ctx context.Context, n int) {
	instrumentsOnce.Do(initInstruments)
	usersExported.Add(ctx, int64(n))
}
