package middleware

import (
	"context"
	"net/http"
	"strings"

	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// HeaderRequestID 請求 / 回應共用的 request id header
const HeaderRequestID = "X-Request-Id"

// RequestID 沿用上游帶入的 X-Request-Id，否則產生 UUID；同時寫回回應 header。
//
// id 以 chi 的 RequestIDKey 存入 context，chi 生態的工具（含 GetReqId）都能讀到。
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(HeaderRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		ctx := context.WithValue(r.Context(), chimid.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetReqId(r *http.Request) string {
	return chimid.GetReqID(r.Context())
}
