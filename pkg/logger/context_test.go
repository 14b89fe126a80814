package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/frahmantamala/agency-ops/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

var _ = Describe("context logger", func() {
	It("falls back to the process logger", func() {
		Expect(logger.From(context.Background())).To(BeIdenticalTo(logger.L()))
	})

	It("carries fields and the trace id", func() {
		var buf bytes.Buffer
		base := slog.New(slog.NewJSONHandler(&buf, nil))

		ctx := logger.WithLogger(context.Background(), base)
		ctx = logger.With(ctx, "trace_id", "abc-123")

		Expect(logger.TraceID(ctx)).To(Equal("abc-123"))
		logger.From(ctx).Info("hello")
		Expect(buf.String()).To(ContainSubstring(`"trace_id":"abc-123"`))
	})

	It("returns an empty trace id when none was set", func() {
		Expect(logger.TraceID(context.Background())).To(BeEmpty())
	})
})
