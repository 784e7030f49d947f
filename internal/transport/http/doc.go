// Package http implements HTTP request handlers for the APBD Insight web
// service. It provides a thin layer between HTTP transport and business
// logic, following the clean architecture principle of keeping handlers
// focused solely on HTTP concerns.
//
// # Architecture Principles
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to HTTP responses
//	4. No business logic - all logic belongs in the service layer
//	5. Consistent patterns - standardized request/response handling
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Core Packages
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Handler Structure
//
// Each handler follows this pattern:
//
//	func (h *Handler) HandleSomething(w http.ResponseWriter, r *http.Request) {
//	    // 1. Parse and validate request
//	    req, err := parseRequest(r)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//
//	    // 2. Call service layer
//	    result, err := h.service.DoSomething(r.Context(), req)
//	    if err != nil {
//	        render.Render(w, r, errors.MapAnalysisError(err, traceID))
//	        return
//	    }
//
//	    // 3. Format and send response
//	    render.JSON(w, r, formatResponse(result))
//	}
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details specification:
//
//	{
//	    "type": "/errors/analysis/missing-columns",
//	    "title": "Missing Required Columns",
//	    "status": 422,
//	    "detail": "Tidak menemukan kolom Anggaran / Realisasi secara otomatis.",
//	    "instance": "/api/v1/analysis#trace-abc123"
//	}
//
// Analysis sentinel errors returned by the service layer are mapped through
// errors.MapAnalysisError; everything else goes through the central
// errors.ErrorHandler.
//
// # Middleware Integration
//
// Handlers work with these middleware:
//
//	- RequestID: Adds unique request ID for tracing
//	- StructuredLogger: Structured logging with slog
//	- OTel: Traces and metrics per route pattern
//	- Recovery: Handles panics gracefully
//	- CORS: Configures cross-origin requests
//	- RateLimiter: Per-client request throttling
//
// # Testing
//
// Handlers are tested using httptest:
//
//	- Stub or mock service dependencies
//	- Drive the full upload path with in-memory workbooks
//	- Verify problem-details error responses
//	- Check route-level validation middleware
package http
