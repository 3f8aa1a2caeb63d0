package util

import (
	"regexp"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestReGroups(t *testing.T) {
	Convey("ReGroups", t, func() {
		re := regexp.MustCompile(`(?P<first>\w+)\s(?P<last>\w+)`)
		groups := ReGroups(re, "John Doe")
		So(groups["first"], ShouldEqual, "John")
		So(groups["last"], ShouldEqual, "Doe")

		Convey("Should return empty map on no match", func() {
			So(ReGroups(re, "!"), ShouldBeEmpty)
		})
	})
}

func TestMaxMin(t *testing.T) {
	Convey("Max/Min", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Min(1, 5, 2), ShouldEqual, 1)
	})
}

func TestQueue(t *testing.T) {
	Convey("Queue", t, func() {
		var q Queue[int]
		q.Push(1)
		q.Push(2)
		So(q.Len(), ShouldEqual, 2)
		So(q.Peek(), ShouldEqual, 1)
		So(q.Pop(), ShouldEqual, 1)
		So(q.Pop(), ShouldEqual, 2)
		So(q.Pop(), ShouldEqual, 0)
		q.Push(3)
		q.Clear()
		So(q.Len(), ShouldEqual, 0)
	})
}
