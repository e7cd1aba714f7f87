package pptx

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	marginEMU      = 457200 // 0.5in
	titleTopEMU    = 274638
	titleHeightEMU = 1143000
	bodyTopEMU     = 1600200
	bodyBottomEMU  = 342900
)

const slideOpen = xmlHeader + `<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`

const slideClose = `</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`

// escape renders text XML-safe for character data and attribute values.
func escape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

func (b *Builder) contentWidth() int { return b.slideWidth() - 2*marginEMU }

func (b *Builder) bodyHeight() int { return slideHeightEMU - bodyTopEMU - bodyBottomEMU }

// titleShape renders the left-aligned title text box with the accent color.
func (b *Builder) titleShape(title string) string {
	return fmt.Sprintf(
		`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Title"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`+
			`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`+
			`<p:txBody><a:bodyPr wrap="square"><a:normAutofit/></a:bodyPr><a:lstStyle/>`+
			`<a:p><a:pPr algn="l"/><a:r><a:rPr lang="en-US" sz="%d" b="1" dirty="0"><a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:latin typeface="%s"/></a:rPr><a:t>%s</a:t></a:r></a:p>`+
			`</p:txBody></p:sp>`,
		marginEMU, titleTopEMU, b.contentWidth(), titleHeightEMU,
		b.style.TitleSize*100, b.accent, escape(b.style.FontName), escape(title),
	)
}

func (b *Builder) textSlideXML(title string, bullets []string) string {
	var sb strings.Builder
	sb.WriteString(slideOpen)
	sb.WriteString(b.titleShape(title))

	sb.WriteString(fmt.Sprintf(
		`<p:sp><p:nvSpPr><p:cNvPr id="3" name="Content"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`+
			`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`+
			`<p:txBody><a:bodyPr wrap="square"><a:normAutofit/></a:bodyPr><a:lstStyle/>`,
		marginEMU, bodyTopEMU, b.contentWidth(), b.bodyHeight(),
	))
	if len(bullets) == 0 {
		// Keep the text body valid with a single empty paragraph.
		sb.WriteString(`<a:p><a:endParaRPr lang="en-US"/></a:p>`)
	}
	for _, bullet := range bullets {
		sb.WriteString(fmt.Sprintf(
			`<a:p><a:pPr marL="285750" indent="-285750"><a:buChar char="•"/></a:pPr>`+
				`<a:r><a:rPr lang="en-US" sz="%d" dirty="0"><a:latin typeface="%s"/></a:rPr><a:t>%s</a:t></a:r></a:p>`,
			b.style.BulletSize*100, escape(b.style.FontName), escape(bullet),
		))
	}
	sb.WriteString(`</p:txBody></p:sp>`)
	sb.WriteString(slideClose)
	return sb.String()
}

// imageSlideXML places the picture centered in the body area, scaled to fit
// while preserving its aspect ratio.
func (b *Builder) imageSlideXML(title string, pxWidth, pxHeight int) string {
	areaW := b.contentWidth()
	areaH := b.bodyHeight()
	w, h := fitRect(pxWidth, pxHeight, areaW, areaH)
	offX := marginEMU + (areaW-w)/2
	offY := bodyTopEMU + (areaH-h)/2

	var sb strings.Builder
	sb.WriteString(slideOpen)
	sb.WriteString(b.titleShape(title))
	sb.WriteString(fmt.Sprintf(
		`<p:pic><p:nvPicPr><p:cNvPr id="3" name="Source image"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>`+
			`<p:blipFill><a:blip r:embed="rId2"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`+
			`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`,
		offX, offY, w, h,
	))
	sb.WriteString(slideClose)
	return sb.String()
}

// fitRect scales (srcW, srcH) to the largest size fitting (maxW, maxH)
// without distortion. Sources are pixels, bounds are EMU; only the ratio of
// the source matters.
func fitRect(srcW, srcH, maxW, maxH int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return maxW, maxH
	}
	w := maxW
	h := w * srcH / srcW
	if h > maxH {
		h = maxH
		w = h * srcW / srcH
	}
	return w, h
}
