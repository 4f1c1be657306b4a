package task

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestHandle(t *testing.T) {
	Convey("Given a new handle", t, func() {
		h := New()

		Convey("It should be pending", func() {
			So(h.State(), ShouldEqual, Pending)
			So(h.Pending(), ShouldBeTrue)
		})

		Convey("When it is completed", func() {
			So(h.TryComplete(), ShouldBeTrue)

			Convey("Then it cannot complete twice", func() {
				So(h.TryComplete(), ShouldBeFalse)
			})

			Convey("Then cancelling is a no-op", func() {
				var ran bool
				h.OnCancel(func() { ran = true })
				h.Cancel()
				So(h.State(), ShouldEqual, Completed)
				So(ran, ShouldBeFalse)
			})
		})

		Convey("When it is cancelled", func() {
			var calls int
			h.OnCancel(func() { calls++ })
			h.Cancel()
			h.Cancel()

			Convey("Then the forwarders should run once", func() {
				So(calls, ShouldEqual, 1)
			})

			Convey("Then it can no longer complete", func() {
				So(h.TryComplete(), ShouldBeFalse)
				So(h.State(), ShouldEqual, Cancelled)
			})

			Convey("Then late forwarders run immediately", func() {
				var late bool
				h.OnCancel(func() { late = true })
				So(late, ShouldBeTrue)
			})

			Convey("Then the channel should be closed", func() {
				_, open := <-h.Cancelled()
				So(open, ShouldBeFalse)
			})
		})
	})

	Convey("Given a handle raced between cancel and complete", t, func() {
		for i := 0; i < 200; i++ {
			h := New()
			var delivered atomic.Int32
			var wg sync.WaitGroup
			wg.Add(2)
			go func() {
				defer wg.Done()
				if h.TryComplete() {
					delivered.Add(1)
				}
			}()
			go func() {
				defer wg.Done()
				h.Cancel()
			}()
			wg.Wait()

			So(h.State(), ShouldNotEqual, Pending)
			if h.State() == Cancelled {
				So(delivered.Load(), ShouldEqual, 0)
			} else {
				So(delivered.Load(), ShouldEqual, 1)
			}
		}
	})
}

func TestSlot(t *testing.T) {
	Convey("Given an empty slot", t, func() {
		var s Slot

		Convey("Starting should retain the handle and hand out a live context", func() {
			var got context.Context
			h := s.Start(context.Background(), func(ctx context.Context) *Handle {
				got = ctx
				return New()
			})
			So(s.Current(), ShouldEqual, h)
			So(got.Err(), ShouldBeNil)

			Convey("And cancelling the handle should cancel the context", func() {
				h.Cancel()
				So(got.Err(), ShouldEqual, context.Canceled)
			})
		})

		Convey("Starting twice should cancel the first handle", func() {
			first := s.Start(context.Background(), func(context.Context) *Handle { return New() })
			second := s.Start(context.Background(), func(context.Context) *Handle { return New() })
			So(first.State(), ShouldEqual, Cancelled)
			So(second.State(), ShouldEqual, Pending)
			So(s.Current(), ShouldEqual, second)
		})

		Convey("Setting over a pending handle should be refused", func() {
			So(s.Set(New()), ShouldBeNil)
			So(s.Set(New()), ShouldEqual, ErrPending)
		})

		Convey("Setting over a settled handle should be accepted", func() {
			h := New()
			So(s.Set(h), ShouldBeNil)
			h.TryComplete()
			So(s.Set(New()), ShouldBeNil)
		})

		Convey("Cancel should cancel and release the handle", func() {
			h := New()
			So(s.Set(h), ShouldBeNil)
			s.Cancel()
			So(h.State(), ShouldEqual, Cancelled)
			So(s.Current(), ShouldBeNil)
		})
	})
}
