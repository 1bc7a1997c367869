// Copyright 2024 The svgdom Authors. All rights reserved.
//
// <style> block handling. Tokenizing the block into rules is douceur's
// job; this file keeps the sheet model, the narrow selector grammar
// (tag, .class, tag.class, one catch-all) and rule application through
// the cascade.
package svgdom

import (
	"strings"

	"github.com/aymerick/douceur/css"
	cssparser "github.com/aymerick/douceur/parser"
	"go.uber.org/zap"
)

type cssRule struct {
	tag   string
	class string
	decls []*css.Declaration
}

type styleSheet struct {
	rules    []cssRule
	catchAll []*css.Declaration
}

// parseStyleSheet folds one <style> block into the sheet. A second
// style element extends the same sheet. @font-face rules feed the
// process-wide font registry.
func (p *parser) parseStyleSheet(sheet *styleSheet, text string) {
	parsed, err := cssparser.Parse(text)
	if err != nil {
		p.warn("unparsable style block", zap.Error(err))
		return
	}
	for _, r := range parsed.Rules {
		if r.Kind == css.AtRule {
			if r.Name == "@font-face" {
				p.registerFontFace(r.Declarations)
			}
			continue
		}
		if len(r.Declarations) == 0 {
			continue
		}
		for _, sel := range r.Selectors {
			sel = strings.TrimSpace(sel)
			switch {
			case sel == "*" || sel == "all":
				sheet.catchAll = append(sheet.catchAll, r.Declarations...)
			case strings.HasPrefix(sel, "."):
				sheet.rules = append(sheet.rules, cssRule{class: sel[1:], decls: r.Declarations})
			case strings.Contains(sel, "."):
				parts := strings.SplitN(sel, ".", 2)
				sheet.rules = append(sheet.rules, cssRule{tag: parts[0], class: parts[1], decls: r.Declarations})
			default:
				sheet.rules = append(sheet.rules, cssRule{tag: sel, decls: r.Declarations})
			}
		}
	}
}

// applyDecls feeds matched declarations through the cascade with CSS
// source semantics: presentation attributes lose, inline style wins
// unless the declaration is !important.
func (p *parser) applyDecls(n Node, decls []*css.Declaration) {
	for _, d := range decls {
		v := d.Value
		if d.Important {
			v += "!important"
		}
		applyStyleDecl(p, n, d.Property, v, srcCSS)
	}
}

// applySheet styles one node from the sheet. Higher specificity
// applies first so its declared bits block lower layers: tag.class,
// then .class, then tag, then the catch-all.
func (p *parser) applySheet(sheet *styleSheet, n Node) {
	if sheet == nil {
		return
	}
	tag := n.Kind().String()
	class := n.Base().Style.CSSClass
	if class != "" {
		for _, r := range sheet.rules {
			if r.tag == tag && r.class == class {
				p.applyDecls(n, r.decls)
			}
		}
		for _, r := range sheet.rules {
			if r.tag == "" && r.class == class {
				p.applyDecls(n, r.decls)
			}
		}
	}
	for _, r := range sheet.rules {
		if r.class == "" && r.tag == tag {
			p.applyDecls(n, r.decls)
		}
	}
	if len(sheet.catchAll) > 0 {
		p.applyDecls(n, sheet.catchAll)
	}
}
