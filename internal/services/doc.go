// Package services implements the business logic layer between the HTTP
// handlers and the analysis pipeline. It owns run orchestration, the
// in-memory run cache, and the health surface, keeping the handlers thin
// and the pipeline packages free of transport concerns.
//
// # Architecture
//
// Services follow these principles:
//
//	1. Context propagation for cancellation and tracing
//	2. Dependency injection for loose coupling
//	3. Domain-focused methods that encapsulate business rules
//	4. Errors transformed to sentinels the boundary can map
//
// # Available Services
//
//	- AnalysisService: runs the normalize/classify/aggregate/ratio pipeline
//	  over a workbook and caches the resulting report
//	- RunStore: TTL- and capacity-bounded cache of finished runs
//	- HealthService: liveness, readiness and version information
//
// # Common Service Pattern
//
// Services typically follow this structure:
//
//	type ServiceName struct {
//	    cfg    *config.Config
//	    logger *slog.Logger
//	}
//
//	func (s *ServiceName) Operation(ctx context.Context, input Input) (*Output, error) {
//	    result, err := s.dependency.Do(ctx, input)
//	    if err != nil {
//	        s.logger.ErrorContext(ctx, "operation failed", "error", err)
//	        return nil, fmt.Errorf("operation failed: %w", err)
//	    }
//	    return result, nil
//	}
//
// # Error Handling
//
// Services return sentinel errors that the HTTP boundary maps to problem
// details: ErrRunNotFound becomes 404, ErrWorkbookEmpty 422, and so on.
// The narrative add-on is the exception; its failures are absorbed here
// and never surface past a warn log.
package services
