// Package observe concentra as métricas OpenTelemetry do cliente.
//
// As métricas são registradas pela API de Metrics do OTel. InitProvider liga um
// exportador Prometheus para que /metrics continue funcionando. Testes devem usar
// NewMetrics com um MeterProvider próprio para não poluir o provider global.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "StructureVision/cliente"

// Metrics guarda os instrumentos usados pelo cliente. Seguro para uso concorrente.
type Metrics struct {
	// AssetLoads conta buscas de modelo por tipo canônico e status ("ok" | "error").
	AssetLoads metric.Int64Counter

	// AssetFallbacks conta visuais procedurais usados no lugar de um modelo.
	AssetFallbacks metric.Int64Counter

	// AssetLoadDuration mede a latência da busca de um modelo (segundos).
	AssetLoadDuration metric.Float64Histogram

	// UsageErrors conta erros de uso da fachada por operação e motivo.
	UsageErrors metric.Int64Counter

	// LiveStructures acompanha quantas entidades visuais estão vivas.
	LiveStructures metric.Int64UpDownCounter

	// GPUUploads conta modelos enviados à GPU pela thread principal.
	GPUUploads metric.Int64Counter

	// EventsReceived conta eventos de estrutura recebidos do servidor, por tipo.
	EventsReceived metric.Int64Counter
}

var loadBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
}

// NewMetrics cria todos os instrumentos a partir do MeterProvider informado.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.AssetLoads, err = m.Int64Counter("structures.asset.loads",
		metric.WithDescription("Buscas de modelo por tipo canônico e status."),
	); err != nil {
		return nil, err
	}
	if met.AssetFallbacks, err = m.Int64Counter("structures.asset.fallbacks",
		metric.WithDescription("Visuais procedurais usados no lugar do modelo."),
	); err != nil {
		return nil, err
	}
	if met.AssetLoadDuration, err = m.Float64Histogram("structures.asset.load.duration",
		metric.WithDescription("Latência da busca de modelos."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(loadBuckets...),
	); err != nil {
		return nil, err
	}
	if met.UsageErrors, err = m.Int64Counter("structures.usage_errors",
		metric.WithDescription("Erros de uso da fachada de estruturas por operação."),
	); err != nil {
		return nil, err
	}
	if met.LiveStructures, err = m.Int64UpDownCounter("structures.live",
		metric.WithDescription("Entidades visuais de estrutura vivas."),
	); err != nil {
		return nil, err
	}
	if met.GPUUploads, err = m.Int64Counter("render.gpu.uploads",
		metric.WithDescription("Modelos enviados para a GPU."),
	); err != nil {
		return nil, err
	}
	if met.EventsReceived, err = m.Int64Counter("net.events.received",
		metric.WithDescription("Eventos de estrutura recebidos do servidor."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics retorna a instância global, criada no primeiro uso com
// otel.GetMeterProvider(). Chame InitProvider antes para exportar via Prometheus.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: falha ao criar métricas padrão: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordAssetLoad registra uma busca de modelo e sua duração.
func (m *Metrics) RecordAssetLoad(ctx context.Context, structureType, status string, seconds float64) {
	attrs := metric.WithAttributes(attribute.String("type", structureType))
	m.AssetLoads.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", structureType),
		attribute.String("status", status),
	))
	m.AssetLoadDuration.Record(ctx, seconds, attrs)
}

// RecordFallback registra o uso do visual procedural.
func (m *Metrics) RecordFallback(ctx context.Context, structureType string) {
	m.AssetFallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("type", structureType)))
}

// RecordUsageError registra um erro de uso (id desconhecido, estado errado...).
func (m *Metrics) RecordUsageError(ctx context.Context, op, reason string) {
	m.UsageErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("reason", reason),
	))
}

// RecordEvent registra um evento de rede recebido.
func (m *Metrics) RecordEvent(ctx context.Context, eventType string) {
	m.EventsReceived.Add(ctx, 1, metric.WithAttributes(attribute.String("event", eventType)))
}
