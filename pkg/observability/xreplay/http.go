package xreplay

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/omeyang/xreplay/pkg/observability/xtrace"
)

// MiddlewareOption 配置 HTTP 中间件与 gRPC 拦截器。
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	activateKey  string
	onReplayErr  func(w http.ResponseWriter, r *http.Request, err error)
	traceOptions []xtrace.Option
}

// WithActivateHeader 设置显式激活回放的请求头（gRPC 为同名小写 metadata key）。
//
// 值为 strconv.ParseBool 可识别的真值时激活。默认不启用。
func WithActivateHeader(name string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.activateKey = name
	}
}

// WithReplayErrorHandler 设置 HTTP 回放失败的处理函数。
//
// 默认 panic，由 http.Server 按未处理异常处理。
func WithReplayErrorHandler(fn func(w http.ResponseWriter, r *http.Request, err error)) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.onReplayErr = fn
		}
	}
}

// WithTraceOptions 设置提取追踪信息时的 xtrace 选项。
func WithTraceOptions(opts ...xtrace.Option) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.traceOptions = append(c.traceOptions, opts...)
	}
}

func applyMiddlewareOptions(opts []MiddlewareOption) *middlewareConfig {
	c := &middlewareConfig{
		onReplayErr: func(_ http.ResponseWriter, _ *http.Request, err error) {
			panic(err)
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func truthy(v string) bool {
	ok, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && ok
}

// HTTPMiddleware 返回 HTTP 中间件，为每个请求创建缓冲区并在请求结束时收尾。
//
// 请求先经过 xtrace 注入 trace_id/request_id，再创建缓冲区，
// 因此按 trace_id 的采样器对同一请求在各服务间做出一致决定。
// handler panic 视为未处理异常：按开关激活、回放后继续向上 panic。
// panic(http.ErrAbortHandler) 除外：照常收尾，不激活，随后原样向上 panic。
func (m *Manager) HTTPMiddleware(opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := applyMiddlewareOptions(opts)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := xtrace.ContextFromHTTPRequest(r, cfg.traceOptions...)
			activate := cfg.activateKey != "" && truthy(r.Header.Get(cfg.activateKey))

			aborted := false
			err := m.Run(ctx, func(ctx context.Context) error {
				if activate {
					m.Activate(ctx)
				}
				aborted = serveAbortable(next, w, r.WithContext(ctx))
				return nil
			})
			if err != nil {
				cfg.onReplayErr(w, r, err)
			}
			if aborted {
				panic(http.ErrAbortHandler)
			}
		})
	}
}

// serveAbortable 执行 next。http.ErrAbortHandler 表示客户端中止，不算未处理异常：
// 这里先接住，收尾后再由调用方重新 panic。
func serveAbortable(next http.Handler, w http.ResponseWriter, r *http.Request) (aborted bool) {
	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				aborted = true
				return
			}
			panic(rec)
		}
	}()
	next.ServeHTTP(w, r)
	return false
}
