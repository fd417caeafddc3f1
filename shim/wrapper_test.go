package shim

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/memshim/memsys"
)

var _ = Describe("Wrapper", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *MockEngine
		cb       memsys.Callbacks
		wrapper  *Wrapper
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewMockEngine(mockCtrl)

		factory := func(
			configFile, outputDir string,
			c memsys.Callbacks,
		) (memsys.Engine, error) {
			cb = c
			return engine, nil
		}

		var err error
		wrapper, err = MakeBuilder().WithFactory(factory).Build()
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should report no completion before the first tick", func() {
		Expect(wrapper.IsTransactionDone(0x40, false)).To(BeFalse())
		Expect(wrapper.IsTransactionDone(0x40, true)).To(BeFalse())
	})

	It("should forward AddTransaction to the engine", func() {
		engine.EXPECT().AddTransaction(uint64(0x40), true)

		wrapper.AddTransaction(0x40, true)
	})

	It("should forward WillAcceptTransaction to the engine", func() {
		engine.EXPECT().
			WillAcceptTransaction(uint64(0x40), false).
			Return(true)

		Expect(wrapper.WillAcceptTransaction(0x40, false)).To(BeTrue())
	})

	It("should report the completions that fire during a tick", func() {
		engine.EXPECT().ClockTick().Do(func() {
			cb.ReadComplete(0x40)
			cb.WriteComplete(0x80)
		})

		wrapper.ClockTick()

		Expect(wrapper.IsTransactionDone(0x40, false)).To(BeTrue())
		Expect(wrapper.IsTransactionDone(0x80, true)).To(BeTrue())
		Expect(wrapper.IsTransactionDone(0x40, true)).To(BeFalse())
		Expect(wrapper.IsTransactionDone(0x200, false)).To(BeFalse())
	})

	It("should clear prior completions on the next tick", func() {
		engine.EXPECT().ClockTick().Do(func() {
			cb.ReadComplete(0x40)
		})
		engine.EXPECT().ClockTick()

		wrapper.ClockTick()
		Expect(wrapper.IsTransactionDone(0x40, false)).To(BeTrue())

		wrapper.ClockTick()
		Expect(wrapper.IsTransactionDone(0x40, false)).To(BeFalse())
	})

	It("should close the engine", func() {
		engine.EXPECT().Close().Return(nil)

		Expect(wrapper.Close()).To(Succeed())
	})

	It("should run a transaction to completion", func() {
		gomock.InOrder(
			engine.EXPECT().
				WillAcceptTransaction(uint64(0x40), false).
				Return(false),
			engine.EXPECT().ClockTick(),
			engine.EXPECT().
				WillAcceptTransaction(uint64(0x40), false).
				Return(true),
			engine.EXPECT().AddTransaction(uint64(0x40), false),
			engine.EXPECT().ClockTick(),
			engine.EXPECT().ClockTick().Do(func() {
				cb.ReadComplete(0x40)
			}),
		)

		ticks, err := wrapper.RunTransaction(0x40, false)

		Expect(err).ToNot(HaveOccurred())
		Expect(ticks).To(Equal(uint64(3)))
	})
})

var _ = Describe("Builder", func() {
	It("should propagate engine construction failures", func() {
		factory := func(
			configFile, outputDir string,
			c memsys.Callbacks,
		) (memsys.Engine, error) {
			return nil, errors.New("cannot load configuration")
		}

		wrapper, err := MakeBuilder().WithFactory(factory).Build()

		Expect(err).To(MatchError("cannot load configuration"))
		Expect(wrapper).To(BeNil())
	})

	It("should fail on an unregistered engine name", func() {
		wrapper, err := MakeBuilder().WithEngine("no-such-engine").Build()

		Expect(err).To(HaveOccurred())
		Expect(wrapper).To(BeNil())
	})
})
