package packer

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// packedSample is a minimal but genuine p.a.c.k.e.r. wrapper.
const packedSample = `eval(function(p,a,c,k,e,d){e=function(c){return c.toString(36)};if(!''.replace(/^/,String)){while(c--){d[c.toString(a)]=k[c]||c.toString(a)}k=[function(e){return d[e]}];e=function(){return'\\w+'};c=1};while(c--){if(k[c]){p=p.replace(new RegExp('\\b'+e(c)+'\\b','g'),k[c])}}return p}('0 1="2 3";',4,4,'var|msg|hello|world'.split('|'),0,{}))`

func TestDetect(t *testing.T) {
	Convey("Detect", t, func() {
		So(Detect(packedSample), ShouldBeTrue)
		So(Detect(`var x = 1;`), ShouldBeFalse)
		Convey("Spacing inside the wrapper does not defeat detection", func() {
			So(Detect(`eval(function(p, a, c, k, e, d)`), ShouldBeTrue)
		})
	})
}

func TestUnpack(t *testing.T) {
	Convey("Unpack", t, func() {
		Convey("Decodes a known payload exactly", func() {
			out, err := Unpack(packedSample)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, `var msg="hello world";`)
		})

		Convey("Words without a table entry fall back to themselves", func() {
			src := `}('0 1 zz;',4,2,'var|x'.split('|'),0,{}))`
			out, err := Unpack(src)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, `var x zz;`)
		})

		Convey("High radixes use the custom alphabet", func() {
			src := `}('0 1 2',62,3,'alpha|beta|gamma'.split('|'),0,{}))`
			out, err := Unpack(src)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, `alpha beta gamma`)
		})

		Convey("A count that disagrees with the table raises MalformedInput", func() {
			src := `}('0 1',4,5,'var|x'.split('|'),0,{}))`
			_, err := Unpack(src)
			So(errors.Is(err, ErrMalformedInput), ShouldBeTrue)
		})

		Convey("An out-of-range radix raises MalformedInput", func() {
			src := `}('0 1',99,2,'var|x'.split('|'),0,{}))`
			_, err := Unpack(src)
			So(errors.Is(err, ErrMalformedInput), ShouldBeTrue)
		})

		Convey("Text without a packer invocation raises MalformedInput", func() {
			_, err := Unpack(`function looksNormal() { return 1 }`)
			So(errors.Is(err, ErrMalformedInput), ShouldBeTrue)
		})
	})
}
