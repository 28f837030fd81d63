package tuple

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestTuple(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Tuple Suite")
}

var _ = Describe("Tuple", func() {
	It("holds components in order", func() {
		t := Of(1, "x", 2.5)
		Expect(t.Arity()).To(Equal(3))
		Expect(t.A()).To(Equal(1))
		Expect(t.B()).To(Equal("x"))
		Expect(t.C()).To(Equal(2.5))
		Expect(t.Last()).To(Equal(2.5))
		Expect(t.Values()).To(Equal([]any{1, "x", 2.5}))
	})

	It("compares structurally", func() {
		Expect(Of(1, "x")).To(Equal(Of(1, "x")))
		Expect(Of(1, "x")).NotTo(Equal(Of("x", 1)))
		Expect(Of(1)).NotTo(Equal(Of(1, nil)))
	})

	It("is usable as a map key", func() {
		m := map[Tuple]int{}
		m[Of(1, "x")]++
		m[Of(1, "x")]++
		m[Of(2, "x")]++
		Expect(m).To(HaveLen(2))
		Expect(m[Of(1, "x")]).To(Equal(2))
	})

	It("appends without mutating the receiver", func() {
		t := Of(1)
		u := t.Append(2)
		Expect(t.Arity()).To(Equal(1))
		Expect(u.Arity()).To(Equal(2))
		Expect(u.B()).To(Equal(2))
	})

	It("rejects out-of-range access", func() {
		Expect(func() { Of(1).At(1) }).To(Panic())
		Expect(func() { Of(1, 2, 3, 4).Append(5) }).To(Panic())
		Expect(func() { Of(1, 2, 3, 4, 5) }).To(Panic())
	})
})

var _ = Describe("Composite keys", func() {
	It("compares component-wise", func() {
		Expect(PairOf(1, "x")).To(Equal(PairOf(1, "x")))
		Expect(TripleOf(1, 2, 3)).NotTo(Equal(TripleOf(3, 2, 1)))
		Expect(QuadOf(1, 2, 3, 4)).To(Equal(QuadOf(1, 2, 3, 4)))
	})

	It("round-trips its components", func() {
		p := PairOf("a", 1)
		Expect(p.A).To(Equal("a"))
		Expect(p.B).To(Equal(1))
		q := QuadOf("a", 1, 2.0, true)
		Expect([]any{q.A, q.B, q.C, q.D}).To(Equal([]any{"a", 1, 2.0, true}))
	})
})
