package storage

import "context"

// MediaStorage — контракт загрузки локального файла во внешнее хранилище.
//
// Инвариант: локальный файл удаляется после попытки загрузки всегда,
// независимо от результата. При неуспехе возвращается пустой URL и ошибка;
// политику (фатально или деградация до пустого значения) выбирает
// вызывающий сервисный слой.
type MediaStorage interface {
	// UploadFile загружает файл по локальному пути и возвращает публичный URL.
	UploadFile(ctx context.Context, localPath string) (string, error)
}
