package dashboard

import (
	"fmt"
	"strconv"
	"strings"
)

// Plot geometry in SVG user units.
const (
	plotWidth   = 720.0
	plotHeight  = 320.0
	marginTop   = 20.0
	marginRight = 20.0
	marginBot   = 56.0
	marginLeft  = 64.0
	labelLeft   = 150.0 // left margin when categories label the y axis
	maxXLabels  = 10
)

type rect struct {
	X, Y, W, H float64
	Tone       string
	Tip        string
}

type polyline struct {
	Points string
	Tone   string
}

type text struct {
	X, Y   float64
	Anchor string
	Value  string
}

type legendItem struct {
	Name string
	Tone string
}

type segment struct {
	X1, Y1, X2, Y2 float64
}

// plot is a chart laid out for the template.
type plot struct {
	Title  string
	Width  float64
	Height float64
	Axes   []segment
	Bars   []rect
	Lines  []polyline
	Labels []text
	Legend []legendItem
}

func layoutChart(c Chart) plot {
	p := plot{Title: c.Title, Width: plotWidth, Height: plotHeight}
	if len(c.Series) > 1 {
		for _, s := range c.Series {
			p.Legend = append(p.Legend, legendItem{Name: s.Name, Tone: s.Tone})
		}
	}
	peak := maxValue(c.Series)

	switch c.Kind {
	case KindHorizontalBar:
		layoutHorizontal(&p, c, peak)
	case KindLine:
		layoutLine(&p, c, peak)
	default:
		layoutGrouped(&p, c, peak)
	}
	return p
}

func maxValue(series []Series) float64 {
	peak := 0.0
	for _, s := range series {
		for _, v := range s.Values {
			if v > peak {
				peak = v
			}
		}
	}
	if peak == 0 {
		return 1
	}
	return peak
}

// scale maps v to [0, length], clamping negatives to 0.
func scale(v, peak, length float64) float64 {
	if v <= 0 {
		return 0
	}
	return v / peak * length
}

func value(s Series, i int) float64 {
	if i < len(s.Values) {
		return s.Values[i]
	}
	return 0
}

func layoutGrouped(p *plot, c Chart, peak float64) {
	innerW := plotWidth - marginLeft - marginRight
	innerH := plotHeight - marginTop - marginBot
	baseY := marginTop + innerH
	p.Axes = verticalAxes(marginLeft, baseY, innerW)
	p.Labels = append(p.Labels, text{X: marginLeft - 6, Y: marginTop + 4, Anchor: "end", Value: formatTick(peak)})

	n := len(c.Categories)
	if n == 0 || len(c.Series) == 0 {
		return
	}
	band := innerW / float64(n)
	barW := band * 0.8 / float64(len(c.Series))
	step := labelStep(n)
	for i, cat := range c.Categories {
		x0 := marginLeft + float64(i)*band + band*0.1
		for j, s := range c.Series {
			v := value(s, i)
			h := scale(v, peak, innerH)
			p.Bars = append(p.Bars, rect{
				X: x0 + float64(j)*barW, Y: baseY - h, W: barW, H: h,
				Tone: s.Tone, Tip: fmt.Sprintf("%s %s: %s", cat, s.Name, formatTick(v)),
			})
		}
		if i%step == 0 {
			p.Labels = append(p.Labels, text{X: x0 + band*0.4, Y: baseY + 18, Anchor: "middle", Value: cat})
		}
	}
}

func layoutHorizontal(p *plot, c Chart, peak float64) {
	innerW := plotWidth - labelLeft - marginRight
	innerH := plotHeight - marginTop - marginBot
	p.Axes = []segment{{X1: labelLeft, Y1: marginTop, X2: labelLeft, Y2: marginTop + innerH}}
	p.Labels = append(p.Labels, text{X: plotWidth - marginRight, Y: marginTop + innerH + 18, Anchor: "end", Value: formatTick(peak)})

	n := len(c.Categories)
	if n == 0 || len(c.Series) == 0 {
		return
	}
	s := c.Series[0]
	band := innerH / float64(n)
	for i, cat := range c.Categories {
		v := value(s, i)
		// First category at the bottom.
		y := marginTop + float64(n-1-i)*band
		p.Bars = append(p.Bars, rect{
			X: labelLeft, Y: y + band*0.15, W: scale(v, peak, innerW), H: band * 0.7,
			Tone: s.Tone, Tip: fmt.Sprintf("%s: %s", cat, formatTick(v)),
		})
		p.Labels = append(p.Labels, text{X: labelLeft - 6, Y: y + band/2 + 4, Anchor: "end", Value: cat})
	}
}

func layoutLine(p *plot, c Chart, peak float64) {
	innerW := plotWidth - marginLeft - marginRight
	innerH := plotHeight - marginTop - marginBot
	baseY := marginTop + innerH
	p.Axes = verticalAxes(marginLeft, baseY, innerW)
	p.Labels = append(p.Labels, text{X: marginLeft - 6, Y: marginTop + 4, Anchor: "end", Value: formatTick(peak)})

	n := len(c.Categories)
	if n == 0 {
		return
	}
	x := func(i int) float64 {
		if n == 1 {
			return marginLeft + innerW/2
		}
		return marginLeft + float64(i)*innerW/float64(n-1)
	}
	for _, s := range c.Series {
		pts := make([]string, n)
		for i := range c.Categories {
			pts[i] = formatPoint(x(i), baseY-scale(value(s, i), peak, innerH))
		}
		p.Lines = append(p.Lines, polyline{Points: strings.Join(pts, " "), Tone: s.Tone})
	}
	step := labelStep(n)
	for i, cat := range c.Categories {
		if i%step == 0 {
			p.Labels = append(p.Labels, text{X: x(i), Y: baseY + 18, Anchor: "middle", Value: cat})
		}
	}
}

func verticalAxes(left, baseY, width float64) []segment {
	return []segment{
		{X1: left, Y1: marginTop, X2: left, Y2: baseY},
		{X1: left, Y1: baseY, X2: left + width, Y2: baseY},
	}
}

// labelStep thins category labels so at most maxXLabels are drawn.
func labelStep(n int) int {
	if n <= maxXLabels {
		return 1
	}
	return (n + maxXLabels - 1) / maxXLabels
}

func formatPoint(x, y float64) string {
	return strconv.FormatFloat(x, 'f', 1, 64) + "," + strconv.FormatFloat(y, 'f', 1, 64)
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
