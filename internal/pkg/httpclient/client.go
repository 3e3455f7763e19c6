// internal/pkg/httpclient/client.go
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Client 是一个可追踪的、可注入的 HTTP 客户端。
type Client struct {
	Tracer     trace.Tracer
	HTTPClient *http.Client
}

// NewClient 创建一个新的客户端实例。
// 不设置 http.Client 的 Timeout 字段，超时完全受每次请求传入的 context 控制。
func NewClient(tracer trace.Tracer) *Client {
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
	}
	return &Client{
		Tracer:     tracer,
		HTTPClient: httpClient,
	}
}

// Response 是一次调用的原始结果，交由调用方解释语义。
type Response struct {
	StatusCode int
	Body       []byte
}

// PostForm 向 serviceURL 发送一个 application/x-www-form-urlencoded 的 POST。
// 只发起一次请求，不做重试；trace 上下文通过 header 注入传递给下游。
func (c *Client) PostForm(ctx context.Context, serviceURL string, params url.Values) (*Response, error) {
	parsedURL, err := url.Parse(serviceURL)
	if err != nil {
		return nil, err
	}
	// 从 URL 中解析出服务名用于 Span
	spanName := fmt.Sprintf("call-%s", strings.Split(parsedURL.Host, ":")[0])

	ctx, span := c.Tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, parsedURL.String(), strings.NewReader(params.Encode()))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	span.SetAttributes(
		attribute.String("http.url", parsedURL.String()),
		attribute.String("http.method", http.MethodPost),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, resp.Status)
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
