package rule

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	g "github.com/onsi/gomega"
)

func TestRule(t *testing.T) {
	g.RegisterFailHandler(Fail)
	RunSpecs(t, "Rule Suite")
}

var _ = Describe("Comparison", func() {
	It("evaluates equality on arbitrary values", func() {
		g.Expect(Equal.Matches("a", "a")).To(g.BeTrue())
		g.Expect(Equal.Matches("a", "b")).To(g.BeFalse())
		g.Expect(NotEqual.Matches(1, 2)).To(g.BeTrue())
		ok, err := Equal.Matches(struct{ X int }{1}, struct{ X int }{1})
		g.Expect(err).NotTo(g.HaveOccurred())
		g.Expect(ok).To(g.BeTrue())
	})

	It("orders integers across widths", func() {
		g.Expect(LessThan.Matches(int32(1), int64(2))).To(g.BeTrue())
		g.Expect(GreaterThanOrEqual.Matches(3, 3)).To(g.BeTrue())
		g.Expect(GreaterThan.Matches(int8(-1), 0)).To(g.BeFalse())
	})

	It("orders floats and strings", func() {
		g.Expect(LessThanOrEqual.Matches(1.5, 1.5)).To(g.BeTrue())
		g.Expect(LessThan.Matches("abc", "abd")).To(g.BeTrue())
	})

	It("mixes integers into float comparisons", func() {
		g.Expect(LessThan.Matches(1, 1.5)).To(g.BeTrue())
		g.Expect(GreaterThan.Matches(2.5, 2)).To(g.BeTrue())
	})

	It("rejects unordered operand types", func() {
		_, err := LessThan.Matches("a", 1)
		g.Expect(err).To(g.HaveOccurred())
		_, err = GreaterThan.Matches(struct{}{}, struct{}{})
		g.Expect(err).To(g.HaveOccurred())
	})
})
