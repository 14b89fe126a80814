package dataport_test

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/frahmantamala/agency-ops/internal/dataport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubHandler struct {
	name      string
	deps      []string
	seen      *[]string
	fail      map[string]bool
	finalized int
	finalErr  error
}

func (h *stubHandler) Name() string           { return h.name }
func (h *stubHandler) Dependencies() []string { return h.deps }

func (h *stubHandler) Upsert(ctx context.Context, record json.RawMessage) (dataport.Outcome, error) {
	*h.seen = append(*h.seen, h.name)
	if h.fail[string(record)] {
		return 0, errors.New("boom")
	}
	if string(record) == `"existing"` {
		return dataport.OutcomeUpdated, nil
	}
	return dataport.OutcomeImported, nil
}

func (h *stubHandler) AfterImport(ctx context.Context) error {
	h.finalized++
	return h.finalErr
}

var _ = Describe("Pipeline", func() {
	var seen []string

	stub := func(name string, deps ...string) *stubHandler {
		return &stubHandler{name: name, deps: deps, seen: &seen, fail: map[string]bool{}}
	}

	BeforeEach(func() {
		seen = nil
	})

	It("breaks ties by registration order", func() {
		p, err := dataport.NewPipeline(
			stub("c", "a"),
			stub("a"),
			stub("b"),
			stub("d", "c", "b"),
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Order()).To(Equal([]string{"a", "c", "b", "d"}))
	})

	It("rejects cycles at construction", func() {
		_, err := dataport.NewPipeline(stub("a", "b"), stub("b", "a"), stub("c"))
		Expect(err).To(MatchError(ContainSubstring("cycle among a, b")))
	})

	It("rejects unknown dependencies", func() {
		_, err := dataport.NewPipeline(stub("a", "ghost"))
		Expect(err).To(MatchError(ContainSubstring("unknown entity")))
	})

	It("counts outcomes and keeps going past failures", func() {
		a := stub("a")
		a.fail[`"bad"`] = true
		b := stub("b", "a")
		p, err := dataport.NewPipeline(b, a)
		Expect(err).NotTo(HaveOccurred())

		result, err := p.Run(context.Background(), dataport.ImportData{
			"b":     {json.RawMessage(`"existing"`)},
			"a":     {json.RawMessage(`"new"`), json.RawMessage(`"bad"`), json.RawMessage(`"existing"`)},
			"ghost": {json.RawMessage(`"x"`)},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(Equal([]string{"a", "a", "a", "b"}))
		Expect(result.Imported).To(Equal(1))
		Expect(result.Updated).To(Equal(2))
		Expect(result.Skipped).To(Equal(1))
		Expect(result.Entities["a"]).To(Equal(&dataport.EntityResult{Imported: 1, Updated: 1, Skipped: 1}))
		Expect(result.Errors).To(ConsistOf("ghost: unknown entity ignored", "a[1]: boom"))
		Expect(a.finalized).To(Equal(1))
		Expect(b.finalized).To(Equal(0))
	})
})

var _ = Describe("Pipeline finalize", func() {
	It("reports a failed finalize and keeps the counts", func() {
		var seen []string
		a := &stubHandler{name: "a", seen: &seen, fail: map[string]bool{}, finalErr: errors.New("setval denied")}
		b := &stubHandler{name: "b", deps: []string{"a"}, seen: &seen, fail: map[string]bool{}}
		p, err := dataport.NewPipeline(a, b)
		Expect(err).NotTo(HaveOccurred())

		result, err := p.Run(context.Background(), dataport.ImportData{
			"a": {json.RawMessage(`"new"`)},
			"b": {json.RawMessage(`"new"`)},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Imported).To(Equal(2))
		Expect(result.Errors).To(ConsistOf("a: finalize: setval denied"))
		Expect(b.finalized).To(Equal(1))
	})
})

var _ = Describe("NormalizeDates", func() {
	It("rewrites bare dates only", func() {
		out, err := dataport.NormalizeDates(json.RawMessage(`{"expenseDate":"2024-02-29","period":"2024-02","note":"2024-02-29 lunch"}`))
		Expect(err).NotTo(HaveOccurred())
		var fields map[string]string
		Expect(json.Unmarshal(out, &fields)).To(Succeed())
		Expect(fields["expenseDate"]).To(Equal("2024-02-29T00:00:00Z"))
		Expect(fields["period"]).To(Equal("2024-02"))
		Expect(fields["note"]).To(Equal("2024-02-29 lunch"))
	})

	It("leaves free-text fields that look like dates untouched", func() {
		out, err := dataport.NormalizeDates(json.RawMessage(`{"notes":"2024-05-01","title":"2024-05-01","paidAt":"2024-05-01","hireDate":"2024-05-01"}`))
		Expect(err).NotTo(HaveOccurred())
		var fields map[string]string
		Expect(json.Unmarshal(out, &fields)).To(Succeed())
		Expect(fields["notes"]).To(Equal("2024-05-01"))
		Expect(fields["title"]).To(Equal("2024-05-01"))
		Expect(fields["paidAt"]).To(Equal("2024-05-01T00:00:00Z"))
		Expect(fields["hireDate"]).To(Equal("2024-05-01T00:00:00Z"))
	})

	It("rejects non-object records", func() {
		_, err := dataport.NormalizeDates(json.RawMessage(`[1,2]`))
		Expect(err).To(HaveOccurred())
	})
})
