// Package i18n stores the translations of a locale and renders them with the
// lang interpreter.
//
// A [Translator] holds flat, dot-separated translation keys whose values are
// phrase text. Phrases are parsed on first lookup and cached; [Translator.Extend]
// evicts every key it replaces. Rendering evaluates the phrase against the
// translator's default bindings merged with bindings passed to the call:
//
//	tr, err := i18n.New("en-US", i18n.WithTranslations(map[string]any{
//		"cart": map[string]any{
//			"total": "Total: ${formatCurrency(amount, 'USD')}",
//		},
//	}))
//
//	text, err := tr.T(ctx, "cart.total", lang.Locals{"amount": 12.5})
//	// Total: $12.50
//
// The default bindings format numbers, currency amounts, percentages and
// dates by the conventions of the locale, select phrases by plural category,
// and render other keys (t and tToParts). Named formats are configured with
// [WithFormats].
package i18n
