package metrics

type Exporter string

const (
	PrometheusExporter Exporter = "prometheus"
	OTLPExporter       Exporter = "otlp"
)

type Config struct {
	ServiceName string
	Exporters   []ExporterCfg
}

type ExporterCfg struct {
	Exporter Exporter
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

type OptionFn func(config Config) Config

func WithServiceName(serviceName string) OptionFn {
	return func(config Config) Config {
		config.ServiceName = serviceName

		return config
	}
}

func WithPrometheus() OptionFn {
	return func(config Config) Config {
		config.Exporters = append(config.Exporters, ExporterCfg{Exporter: PrometheusExporter})

		return config
	}
}

func WithOTLPCollector(url string, headers map[string]string, insecure bool) OptionFn {
	return func(config Config) Config {
		config.Exporters = append(config.Exporters, ExporterCfg{
			Exporter: OTLPExporter,
			Endpoint: url,
			Headers:  headers,
			Insecure: insecure,
		})

		return config
	}
}

type PromServerConfig struct {
	port string
}

type PromOptionFn func(config PromServerConfig) PromServerConfig

func WithPort(port string) PromOptionFn {
	return func(config PromServerConfig) PromServerConfig {
		config.port = port
		return config
	}
}
