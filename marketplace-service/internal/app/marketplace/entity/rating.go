package entity

// NextAverage вычисляет новое среднее при добавлении одной оценки.
// count - число отзывов ДО вставки: формула взвешенно вмешивает новую
// оценку в старое среднее, инкремент счётчика выполняется отдельно.
func NextAverage(average float64, count int64, rating int) float64 {
	return (average*float64(count) + float64(rating)) / float64(count+1)
}
