package tts

import (
	"fmt"
	"strings"
)

// Category категория паттерна, определяющая эмоциональную подачу
type Category string

const (
	CategoryGoingTo     Category = "going_to"
	CategoryWantTo      Category = "want_to"
	CategoryCanI        Category = "can_i"
	CategoryDoYouWantTo Category = "do_you_want_to"
	CategoryGeneral     Category = "general"
)

// Directive инструкция подачи, которая добавляется к тексту в запросе
type Directive string

const (
	// DirectiveNatural обычное чтение без эмоциональной инструкции
	DirectiveNatural Directive = ""

	DirectiveConfident  Directive = "Read with confidence and determination, like making a firm decision"
	DirectiveEager      Directive = "Read with excitement and eagerness, like you really desire something"
	DirectivePolite     Directive = "Read with a polite, slightly hopeful tone, like making a gentle request"
	DirectiveInviting   Directive = "Read with a friendly, inviting tone, like suggesting something fun"
	DirectiveExpressive Directive = "Read with natural, expressive emotion appropriate for the sentence meaning"

	// DirectiveIntense используется эндпоинтом синтеза по запросу
	DirectiveIntense Directive = "Read the following text with intense, strong emotion (e.g. excitement, anger, sorrow, joy, urgency) matching the context. Express the feelings vividly"
)

var directives = map[Category]Directive{
	CategoryGoingTo:     DirectiveConfident,
	CategoryWantTo:      DirectiveEager,
	CategoryCanI:        DirectivePolite,
	CategoryDoYouWantTo: DirectiveInviting,
	CategoryGeneral:     DirectiveExpressive,
}

// Заголовки паттернов в учебных данных. Сравнение только целиком, без подстрок.
var titleCategories = map[string]Category{
	"i'm going to ~":    CategoryGoingTo,
	"i want to ~":       CategoryWantTo,
	"can i ~?":          CategoryCanI,
	"do you want to ~?": CategoryDoYouWantTo,
}

// ParseCategory разбирает явное значение category. Неизвестное значение дает false.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := directives[c]; ok {
		return c, true
	}
	return CategoryGeneral, false
}

// CategoryFromTitle определяет категорию по заголовку паттерна
func CategoryFromTitle(title string) Category {
	if c, ok := titleCategories[normalizeTitle(title)]; ok {
		return c
	}
	return CategoryGeneral
}

// ResolveCategory выбирает явную категорию, а при её отсутствии - категорию по заголовку
func ResolveCategory(explicit, title string) Category {
	if c, ok := ParseCategory(explicit); ok {
		return c
	}
	return CategoryFromTitle(title)
}

// DirectiveFor возвращает инструкцию подачи для категории
func DirectiveFor(c Category) Directive {
	if d, ok := directives[c]; ok {
		return d
	}
	return DirectiveExpressive
}

// BuildPrompt оборачивает текст в инструкцию для модели синтеза
func BuildPrompt(text string, d Directive) string {
	if d == DirectiveNatural {
		return fmt.Sprintf("Please read this English sentence naturally: \"%s\"", text)
	}
	return fmt.Sprintf("%s. Say: \"%s\"", d, text)
}

func normalizeTitle(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	title = strings.ReplaceAll(title, "’", "'")
	return strings.Join(strings.Fields(title), " ")
}
