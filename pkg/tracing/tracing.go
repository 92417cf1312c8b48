package tracing

import (
	"fmt"
	"strings"

	"contrib.go.opencensus.io/exporter/aws"
	"contrib.go.opencensus.io/exporter/jaeger"
	ocprometheus "contrib.go.opencensus.io/exporter/prometheus"
	"contrib.go.opencensus.io/exporter/stackdriver"
	"contrib.go.opencensus.io/exporter/zipkin"
	"contrib.go.opencensus.io/integrations/ocsql"
	datadog "github.com/DataDog/opencensus-go-exporter-datadog"
	zipkinhttp "github.com/openzipkin/zipkin-go/reporter/http"
	"github.com/prometheus/client_golang/prometheus"
	"go.opencensus.io/plugin/ochttp"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/trace"

	"github.com/CinePrep/cineprep/config"
	"github.com/CinePrep/cineprep/pkg/logger"
)

// Options configures Init.
type Options struct {
	Config      *config.TracingConfig
	Environment string
	// Registry receives the OpenCensus views when the prometheus metrics
	// exporter is selected, so they are served by the API's /metrics.
	Registry *prometheus.Registry
	Logger   logger.Logger
}

type traceExporterFactory func(opts Options) (trace.Exporter, error)

type metricsExporterFactory func(opts Options) (view.Exporter, error)

var traceExporters = map[string]traceExporterFactory{
	"jaeger":      newJaegerExporter,
	"zipkin":      newZipkinExporter,
	"stackdriver": newStackdriverExporter,
	"datadog":     newDatadogExporter,
	"xray":        newXRayExporter,
}

var metricsExporters = map[string]metricsExporterFactory{
	"prometheus":  newPrometheusExporter,
	"stackdriver": newStackdriverMetricsExporter,
	"datadog":     newDatadogMetricsExporter,
}

// Init configures sampling and registers the selected trace and metrics
// exporters. It is a no-op when tracing is disabled.
// codecov:ignore:start
func Init(opts Options) error {
	cfg := opts.Config
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	trace.ApplyConfig(trace.Config{
		DefaultSampler: trace.ProbabilitySampler(cfg.SamplingProbability),
	})

	if name := strings.TrimSpace(cfg.TraceExporter); name != "" && name != "none" {
		factory, ok := traceExporters[name]
		if !ok {
			return fmt.Errorf("unsupported trace exporter: %s", name)
		}
		exporter, err := factory(opts)
		if err != nil {
			return fmt.Errorf("failed to initialize %s trace exporter: %w", name, err)
		}
		trace.RegisterExporter(exporter)
	}

	names, err := metricsExporterNames(cfg.MetricsExporter)
	if err != nil {
		return err
	}
	for _, name := range names {
		exporter, err := metricsExporters[name](opts)
		if err != nil {
			return fmt.Errorf("failed to initialize %s metrics exporter: %w", name, err)
		}
		view.RegisterExporter(exporter)
	}

	if err := view.Register(ochttp.DefaultServerViews...); err != nil {
		return fmt.Errorf("failed to register HTTP server views: %w", err)
	}
	if len(names) > 0 {
		if err := view.Register(ocsql.DefaultViews...); err != nil {
			return fmt.Errorf("failed to register database views: %w", err)
		}
	}

	if opts.Logger != nil {
		opts.Logger.WithFields(map[string]interface{}{
			"trace_exporter":   cfg.TraceExporter,
			"metrics_exporter": strings.Join(names, ","),
			"sampling":         cfg.SamplingProbability,
		}).Info("OpenCensus tracing initialized")
	}
	return nil
}

// codecov:ignore:end

// metricsExporterNames parses a comma-separated exporter list.
func metricsExporterNames(value string) ([]string, error) {
	var names []string
	seen := map[string]bool{}
	for _, name := range strings.Split(value, ",") {
		name = strings.TrimSpace(name)
		if name == "" || name == "none" || seen[name] {
			continue
		}
		if _, ok := metricsExporters[name]; !ok {
			return nil, fmt.Errorf("unsupported metrics exporter: %s", name)
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

func datadogAgent(cfg *config.TracingConfig) string {
	if cfg.DatadogAgentAddress != "" {
		return cfg.DatadogAgentAddress
	}
	return cfg.AgentEndpoint
}

func envTag(environment string) []string {
	if environment == "" {
		environment = "production"
	}
	return []string{"env:" + environment}
}

func newJaegerExporter(opts Options) (trace.Exporter, error) {
	cfg := opts.Config
	if cfg.JaegerEndpoint == "" {
		return nil, fmt.Errorf("jaeger endpoint is required")
	}
	return jaeger.NewExporter(jaeger.Options{
		CollectorEndpoint: cfg.JaegerEndpoint,
		ServiceName:       cfg.ServiceName,
		Process: jaeger.Process{
			ServiceName: cfg.ServiceName,
			Tags:        []jaeger.Tag{jaeger.StringTag("environment", opts.Environment)},
		},
	})
}

func newZipkinExporter(opts Options) (trace.Exporter, error) {
	if opts.Config.ZipkinEndpoint == "" {
		return nil, fmt.Errorf("zipkin endpoint is required")
	}
	return zipkin.NewExporter(zipkinhttp.NewReporter(opts.Config.ZipkinEndpoint), nil), nil
}

func newStackdriverExporter(opts Options) (trace.Exporter, error) {
	if opts.Config.StackdriverProjectID == "" {
		return nil, fmt.Errorf("stackdriver project ID is required")
	}
	return stackdriver.NewExporter(stackdriver.Options{
		ProjectID: opts.Config.StackdriverProjectID,
	})
}

func newDatadogExporter(opts Options) (trace.Exporter, error) {
	agent := datadogAgent(opts.Config)
	if agent == "" {
		return nil, fmt.Errorf("datadog agent address is required")
	}
	return datadog.NewExporter(datadog.Options{
		Service:   opts.Config.ServiceName,
		TraceAddr: agent,
		StatsAddr: agent,
		Tags:      envTag(opts.Environment),
	})
}

func newXRayExporter(opts Options) (trace.Exporter, error) {
	if opts.Config.XRayRegion == "" {
		return nil, fmt.Errorf("AWS region is required for X-Ray")
	}
	return aws.NewExporter(
		aws.WithRegion(opts.Config.XRayRegion),
		aws.WithVersion("latest"),
	)
}

func newPrometheusExporter(opts Options) (view.Exporter, error) {
	return ocprometheus.NewExporter(ocprometheus.Options{
		Namespace: strings.ReplaceAll(opts.Config.ServiceName, "-", "_"),
		Registry:  opts.Registry,
		OnError:   exporterErrorHandler(opts.Logger, "prometheus"),
	})
}

func newStackdriverMetricsExporter(opts Options) (view.Exporter, error) {
	if opts.Config.StackdriverProjectID == "" {
		return nil, fmt.Errorf("stackdriver project ID is required")
	}
	return stackdriver.NewExporter(stackdriver.Options{
		ProjectID:    opts.Config.StackdriverProjectID,
		MetricPrefix: opts.Config.ServiceName,
		OnError:      exporterErrorHandler(opts.Logger, "stackdriver"),
	})
}

func newDatadogMetricsExporter(opts Options) (view.Exporter, error) {
	agent := datadogAgent(opts.Config)
	if agent == "" {
		return nil, fmt.Errorf("datadog agent address is required")
	}
	options := datadog.Options{
		Service:   opts.Config.ServiceName,
		TraceAddr: agent,
		StatsAddr: agent,
		Tags:      envTag(opts.Environment),
		OnError:   exporterErrorHandler(opts.Logger, "datadog"),
	}
	if opts.Config.DatadogAPIKey != "" {
		options.GlobalTags = map[string]interface{}{"api_key": opts.Config.DatadogAPIKey}
	}
	return datadog.NewExporter(options)
}

func exporterErrorHandler(log logger.Logger, exporter string) func(error) {
	return func(err error) {
		if log != nil {
			log.WithField("exporter", exporter).WithField("error", err.Error()).Warn("Metrics export failed")
		}
	}
}
