package storage

var TranslateError = translateError
