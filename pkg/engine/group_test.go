package engine

import (
	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/streamrule/streamrule/pkg/collector"
	"github.com/streamrule/streamrule/pkg/stream"
	"github.com/streamrule/streamrule/pkg/tuple"
)

// spyCollector wraps another collector and counts its add/undo calls, so the
// tests can tell incremental maintenance apart from a rebuild from scratch.
type spyCollector struct {
	inner collector.Collector
	adds  int
	undos int
}

func (c *spyCollector) NewState() any { return c.inner.NewState() }

func (c *spyCollector) Add(state any, row tuple.Tuple) any {
	c.adds++
	return c.inner.Add(state, row)
}

func (c *spyCollector) Undo(state any, row tuple.Tuple) any {
	c.undos++
	return c.inner.(collector.Undoable).Undo(state, row)
}

func (c *spyCollector) Finish(state any) any { return c.inner.Finish(state) }

var _ = Describe("Group-by", func() {
	var f *stream.Factory

	BeforeEach(func() {
		f = stream.NewFactory(logr.Discard())
	})

	keyA := func(t tuple.Tuple) any { return t.A().(record).a }
	keyB := func(t tuple.Tuple) any { return t.A().(record).b }

	insertRecords := func(s *Session, recs ...record) {
		GinkgoHelper()
		for _, r := range recs {
			Expect(s.Insert(r)).To(Succeed())
		}
	}

	groupDef := func(name string, keys []stream.KeyMapping, cols []collector.Collector) *Session {
		GinkgoHelper()
		grouped, err := stream.From[record](f).GroupBy(keys, cols)
		Expect(err).NotTo(HaveOccurred())
		def, err := grouped.Terminate(name)
		Expect(err).NotTo(HaveOccurred())
		return mustSession(def)
	}

	It("produces one combination per distinct key", func() {
		s := groupDef("by a", []stream.KeyMapping{keyA},
			[]collector.Collector{collector.Count()})
		insertRecords(s, record{a: 1, b: "x"}, record{a: 1, b: "y"}, record{a: 2, b: "x"})

		matches, err := s.Matches("by a")
		Expect(err).NotTo(HaveOccurred())
		Expect(matches).To(HaveLen(2))

		counts := map[int64]int64{}
		for _, m := range matches {
			counts[m.Tuple.A().(int64)] = m.Tuple.B().(int64)
		}
		Expect(counts).To(Equal(map[int64]int64{1: 2, 2: 1}))
	})

	It("decomposes a two-part key back into the original components", func() {
		s := groupDef("by a and b", []stream.KeyMapping{keyA, keyB},
			[]collector.Collector{collector.Count()})
		insertRecords(s, record{a: 1, b: "x"}, record{a: 1, b: "y"}, record{a: 2, b: "x"})

		matches, err := s.Matches("by a and b")
		Expect(err).NotTo(HaveOccurred())
		Expect(matches).To(HaveLen(3))

		seen := map[tuple.Pair]int64{}
		for _, m := range matches {
			Expect(m.Tuple.Arity()).To(Equal(3))
			seen[tuple.PairOf(m.Tuple.A(), m.Tuple.B())] = m.Tuple.C().(int64)
		}
		Expect(seen).To(Equal(map[tuple.Pair]int64{
			tuple.PairOf(int64(1), "x"): 1,
			tuple.PairOf(int64(1), "y"): 1,
			tuple.PairOf(int64(2), "x"): 1,
		}))
	})

	It("groups everything together without key mappings", func() {
		s := groupDef("all", nil, []collector.Collector{
			collector.Sum(func(t tuple.Tuple) int64 { return t.A().(record).a }),
		})
		insertRecords(s, record{a: 1, b: "x"}, record{a: 2, b: "y"}, record{a: 3, b: "z"})

		matches, err := s.Matches("all")
		Expect(err).NotTo(HaveOccurred())
		Expect(matches).To(HaveLen(1))
		Expect(matches[0].Tuple.Arity()).To(Equal(1))
		Expect(matches[0].Tuple.A()).To(Equal(int64(6)))
	})

	DescribeTable("recovers composite key components in mapping order",
		func(arity int) {
			keys := []stream.KeyMapping{keyA, keyB,
				func(t tuple.Tuple) any { return t.A().(record).a * 10 },
				func(t tuple.Tuple) any { return t.A().(record).b + "!" },
			}[:arity]
			s := groupDef("round trip", keys, nil)
			insertRecords(s, record{a: 7, b: "q"})

			matches, err := s.Matches("round trip")
			Expect(err).NotTo(HaveOccurred())
			Expect(matches).To(HaveLen(1))
			want := []any{int64(7), "q", int64(70), "q!"}[:arity]
			Expect(matches[0].Tuple.Values()).To(Equal(want))
		},
		Entry("two components", 2),
		Entry("three components", 3),
		Entry("four components", 4),
	)

	It("drops groups whose last member is retracted", func() {
		s := groupDef("by a", []stream.KeyMapping{keyA},
			[]collector.Collector{collector.Count()})
		r := record{a: 2, b: "x"}
		insertRecords(s, record{a: 1, b: "x"}, r)

		matches, err := s.Matches("by a")
		Expect(err).NotTo(HaveOccurred())
		Expect(matches).To(HaveLen(2))

		Expect(s.Retract(r)).To(Succeed())
		matches, err = s.Matches("by a")
		Expect(err).NotTo(HaveOccurred())
		Expect(matches).To(HaveLen(1))
		Expect(matches[0].Tuple.A()).To(Equal(int64(1)))
	})

	It("retracts via undo instead of rebuilding when the collector supports it", func() {
		spy := &spyCollector{inner: collector.Sum(func(t tuple.Tuple) int64 {
			return t.A().(record).a
		})}
		s := groupDef("spied sum", nil, []collector.Collector{spy})
		r := record{a: 2, b: "y"}
		insertRecords(s, record{a: 1, b: "x"}, r, record{a: 3, b: "z"})

		matches, err := s.Matches("spied sum")
		Expect(err).NotTo(HaveOccurred())
		Expect(matches[0].Tuple.A()).To(Equal(int64(6)))
		addsBefore := spy.adds

		Expect(s.Retract(r)).To(Succeed())
		matches, err = s.Matches("spied sum")
		Expect(err).NotTo(HaveOccurred())
		Expect(matches[0].Tuple.A()).To(Equal(int64(4)))
		Expect(spy.undos).To(Equal(1))
		Expect(spy.adds).To(Equal(addsBefore))
	})

	It("rebuilds the group when the collector cannot undo", func() {
		s := groupDef("minimum", nil, []collector.Collector{
			collector.Min(func(t tuple.Tuple) int64 { return t.A().(record).a }),
		})
		r := record{a: 1, b: "x"}
		insertRecords(s, r, record{a: 2, b: "y"}, record{a: 3, b: "z"})

		matches, err := s.Matches("minimum")
		Expect(err).NotTo(HaveOccurred())
		Expect(matches[0].Tuple.A()).To(Equal(int64(1)))

		Expect(s.Retract(r)).To(Succeed())
		matches, err = s.Matches("minimum")
		Expect(err).NotTo(HaveOccurred())
		Expect(matches[0].Tuple.A()).To(Equal(int64(2)))
	})

	It("filters on the decomposed result variables", func() {
		grouped, err := stream.From[record](f).GroupBy([]stream.KeyMapping{keyB},
			[]collector.Collector{collector.Count()})
		Expect(err).NotTo(HaveOccurred())
		heavy, err := grouped.Filter(func(t tuple.Tuple) bool {
			return t.B().(int64) > 1
		})
		Expect(err).NotTo(HaveOccurred())
		def, err := heavy.Terminate("crowded keys")
		Expect(err).NotTo(HaveOccurred())
		s := mustSession(def)
		insertRecords(s, record{a: 1, b: "x"}, record{a: 2, b: "x"}, record{a: 3, b: "y"})

		matches, err := s.Matches("crowded keys")
		Expect(err).NotTo(HaveOccurred())
		Expect(matches).To(HaveLen(1))
		Expect(matches[0].Tuple.A()).To(Equal("x"))
		Expect(matches[0].Tuple.B()).To(Equal(int64(2)))
	})
})
