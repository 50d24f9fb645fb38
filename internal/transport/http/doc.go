// Package http implements the HTTP request handlers of the DOE Lab service.
// Handlers are a thin layer between the HTTP transport and the service layer:
// they decode and validate the request, call a service and render the result.
//
// # Handler Structure
//
// Each handler follows this pattern:
//
//	func (h *Handler) HandleSomething(w http.ResponseWriter, r *http.Request) {
//	    // 1. Decode and validate the request contract
//	    var req api.SomethingRequest
//	    if err := h.decode(r, &req); err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//
//	    // 2. Call the service layer
//	    result, err := h.service.DoSomething(r.Context(), somethingToDomain(req))
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//
//	    // 3. Render the response
//	    render.JSON(w, r, result)
//	}
//
// # Error Handling
//
// All errors are rendered as RFC 7807 Problem Details by the shared
// errors.ErrorHandler. ErrorMappings binds the engine sentinel errors to
// status codes:
//
//	{
//	    "type": "/errors/insufficient-data",
//	    "title": "Unprocessable Entity",
//	    "status": 422,
//	    "detail": "estimate interval: insufficient data: data needs at least 2 points, got 1",
//	    "instance": "/api/stats/estimation",
//	    "error_code": "INSUFFICIENT_DATA"
//	}
//
// # Testing
//
// Handlers are tested with httptest and testify mocks of the service
// interfaces declared in services.go.
package http
