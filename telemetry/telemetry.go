// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package telemetry configures OpenTelemetry providers for evaluation runs.
//
// Exporters are wired from the standard OTEL_EXPORTER_OTLP_* environment
// variables and, optionally, from Google Cloud via [WithOtelToCloud]. Batch
// and conversation spans plus judge call logs flow through the providers
// returned by [New].
package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	internal "github.com/harinee-md/log-analyzer-agent/internal/telemetry"
)

// Providers bundles the configured OTel providers and manages their lifecycle.
// A provider is nil when no exporter or processor was configured for it.
type Providers struct {
	TracerProvider *sdktrace.TracerProvider
	LoggerProvider *sdklog.LoggerProvider
}

// SetGlobalOtelProviders registers the configured providers as the global OTel providers.
// Nil providers are left unregistered so existing globals stay in place.
func (p *Providers) SetGlobalOtelProviders() {
	if p.TracerProvider != nil {
		otel.SetTracerProvider(p.TracerProvider)
	}
	if p.LoggerProvider != nil {
		global.SetLoggerProvider(p.LoggerProvider)
	}
}

// Shutdown flushes pending telemetry and shuts down the underlying OTel providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if p.LoggerProvider != nil {
		if err := p.LoggerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// New initializes the telemetry providers: TracerProvider and LoggerProvider.
// Options can be used to customize the defaults, e.g. use custom credentials,
// add SpanProcessors, or use a preconfigured TracerProvider.
// Providers have to be registered as the global OTel providers either manually
// or via [Providers.SetGlobalOtelProviders] before starting evaluation runs.
//
// # Usage
//
//	 import (
//		"context"
//		"log"
//		"time"
//
//		"go.opentelemetry.io/otel/sdk/resource"
//		semconv "go.opentelemetry.io/otel/semconv/v1.36.0"
//
//		"github.com/harinee-md/log-analyzer-agent/telemetry"
//	 )
//
//	 func main() {
//			ctx := context.Background()
//			res, err := resource.New(ctx,
//				resource.WithAttributes(
//					semconv.ServiceNameKey.String("conversation-eval"),
//					semconv.ServiceVersionKey.String("1.0.0"),
//				),
//			)
//			if err != nil {
//				log.Fatalf("failed to create resource: %v", err)
//			}
//
//			providers, err := telemetry.New(ctx,
//				telemetry.WithOtelToCloud(true),
//				telemetry.WithResource(res),
//			)
//			if err != nil {
//				log.Fatal(err)
//			}
//			defer func() {
//				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//				defer cancel()
//				if err := providers.Shutdown(shutdownCtx); err != nil {
//					log.Printf("telemetry shutdown failed: %v", err)
//				}
//			}()
//			providers.SetGlobalOtelProviders()
//
//			// Run evaluations. Pipeline spans and judge logs are exported
//			// through the registered providers.
//		}
//
// The caller must call [Providers.Shutdown] to gracefully shut down the
// underlying telemetry and release resources.
func New(ctx context.Context, opts ...Option) (*Providers, error) {
	cfg, err := configure(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return newInternal(ctx, cfg)
}

// RegisterLocalSpanProcessor registers the span processor on the pipeline's
// local trace provider instance. Any processor should be registered BEFORE any
// of the events are emitted, otherwise the registration will be ignored.
// In addition to processors registered here, global trace provider configs are
// respected.
//
// Deprecated: Configure processors via [Option]s passed to [New].
func RegisterLocalSpanProcessor(processor sdktrace.SpanProcessor) {
	internal.AddSpanProcessor(processor)
}
