package application

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// SVGSanitizer strips everything from fork-supplied SVG that is not plain
// vector artwork: scripts, event handlers, foreign objects, links, style
// sheets and external references. The output is a standalone SVG document:
// the HTML tokenizer lowercases names, so SVG's mixed-case element and
// attribute names are restored after sanitizing.
type SVGSanitizer struct {
	policy *bluemonday.Policy
	casing *strings.Replacer
}

var (
	svgElements = []string{
		"svg", "g", "defs", "title", "desc", "symbol", "use",
		"path", "circle", "ellipse", "rect", "line", "polyline", "polygon",
		"text", "tspan",
		"linearGradient", "radialGradient", "stop",
		"clipPath", "mask", "pattern",
		"filter", "feGaussianBlur", "feOffset", "feBlend", "feColorMatrix",
		"feFlood", "feComposite", "feMerge", "feMergeNode", "feDropShadow",
		"animate", "animateTransform",
	}

	svgAttributes = []string{
		"id", "class", "xmlns", "version", "viewBox", "preserveAspectRatio",
		"width", "height", "x", "y", "x1", "y1", "x2", "y2",
		"cx", "cy", "r", "rx", "ry", "fx", "fy", "d", "points",
		"transform", "opacity",
		"fill-opacity", "fill-rule",
		"stroke-width", "stroke-opacity", "stroke-linecap",
		"stroke-linejoin", "stroke-dasharray", "stroke-miterlimit",
		"offset", "stop-color", "stop-opacity",
		"gradientUnits", "gradientTransform", "spreadMethod",
		"patternUnits", "patternTransform", "maskUnits", "clipPathUnits",
		"filterUnits", "stdDeviation", "dx", "dy", "in", "in2", "result",
		"mode", "type", "operator", "flood-color", "flood-opacity",
		"font-family", "font-size", "font-weight", "text-anchor",
		"dominant-baseline", "letter-spacing",
		"dur", "begin", "repeatCount", "keyTimes", "calcMode", "additive",
	}

	// Paint and reference attributes may only point at fragments within the
	// same document, e.g. fill="url(#grad)".
	svgPaintAttributes = []string{"fill", "stroke", "clip-path", "mask", "filter"}
	svgPaint           = regexp.MustCompile(`^(?:url\(#[\w.-]+\)|(?:rgba?|hsla?)\([\d\s.,%]+\)|[^()]*)$`)

	// Animation values never carry references or functions other than colors.
	svgAnimationValues = []string{"values", "from", "to", "by"}
	svgAnimationValue  = regexp.MustCompile(`^(?:[\w\s.,;%#-]|(?:rgba?|hsla?)\([\d\s.,%]+\))*$`)

	// Animations may only drive presentation attributes, never links.
	svgAnimatable = regexp.MustCompile(`^(?:opacity|fill|stroke|stroke-width|fill-opacity|stroke-opacity|stop-color|stop-opacity|transform|r|rx|ry|cx|cy|x|y|width|height|d|offset)$`)

	svgFragmentRef = regexp.MustCompile(`^#[\w.-]+$`)

	svgStyleProperties = []string{
		"opacity", "fill-opacity", "fill-rule", "stroke-width", "stroke-opacity",
		"stroke-linecap", "stroke-linejoin", "stroke-dasharray", "stop-opacity",
		"font-family", "font-size", "font-weight", "text-anchor", "display", "visibility",
	}
	svgStylePaintProperties = []string{"fill", "stroke", "stop-color", "flood-color"}
	svgStyleValue           = regexp.MustCompile(`^[\w\s.,%#'"-]+$`)
)

// NewSVGSanitizer creates a sanitizer with the creature SVG allow-list.
func NewSVGSanitizer() *SVGSanitizer {
	elements := lowered(svgElements)

	p := bluemonday.NewPolicy()
	p.AllowElements(elements...)
	p.AllowNoAttrs().OnElements(elements...)
	p.AllowAttrs(lowered(svgAttributes)...).Globally()
	p.AllowAttrs(svgPaintAttributes...).Matching(svgPaint).Globally()
	p.AllowAttrs(svgAnimationValues...).Matching(svgAnimationValue).Globally()
	p.AllowAttrs("attributename").Matching(svgAnimatable).OnElements("animate", "animatetransform")
	p.AllowAttrs("href", "xlink:href").Matching(svgFragmentRef).OnElements("use")
	p.AllowStyles(svgStyleProperties...).Matching(svgStyleValue).Globally()
	p.AllowStyles(svgStylePaintProperties...).Matching(svgPaint).Globally()

	return &SVGSanitizer{
		policy: p,
		casing: casingReplacer(svgElements, append([]string{"attributeName"}, svgAttributes...)),
	}
}

// Sanitize returns svg with every disallowed element and attribute removed.
func (s *SVGSanitizer) Sanitize(svg string) string {
	return s.casing.Replace(s.policy.Sanitize(svg))
}

func lowered(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = strings.ToLower(name)
	}
	return out
}

// casingReplacer maps the lowercased tag and attribute spellings emitted by
// the sanitizer back to their SVG names. Longer spellings come first so that
// "<femergenode" is not matched as "<femerge".
func casingReplacer(elements, attributes []string) *strings.Replacer {
	type rename struct{ from, to string }

	var renames []rename
	for _, name := range elements {
		if lower := strings.ToLower(name); lower != name {
			renames = append(renames,
				rename{"<" + lower, "<" + name},
				rename{"</" + lower + ">", "</" + name + ">"},
			)
		}
	}
	for _, name := range attributes {
		if lower := strings.ToLower(name); lower != name {
			renames = append(renames, rename{" " + lower + `="`, " " + name + `="`})
		}
	}
	slices.SortStableFunc(renames, func(a, b rename) int {
		return cmp.Compare(len(b.from), len(a.from))
	})

	pairs := make([]string, 0, 2*len(renames))
	for _, r := range renames {
		pairs = append(pairs, r.from, r.to)
	}
	return strings.NewReplacer(pairs...)
}
