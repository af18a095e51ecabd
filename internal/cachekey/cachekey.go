// Package cachekey выводит стабильные имена аудиофайлов из текста предложения.
//
// Имя файла - это контракт с фронтендом (docs/js) и другими инструментами:
// первые 12 hex-символов MD5 от UTF-8 байтов текста. Менять хэш или длину нельзя,
// иначе весь накопленный кэш станет недействительным.
package cachekey

import (
	"crypto/md5"
	"encoding/hex"
)

// Length длина ключа в hex-символах
const Length = 12

// Derive возвращает ключ кэша для текста
func Derive(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])[:Length]
}

// Filename возвращает имя файла вида <ключ>.<ext>
func Filename(text, ext string) string {
	return Derive(text) + "." + ext
}
