package util

import (
	"math/rand/v2"
)

func SelectRandom[T any](items []T) T {
	return items[rand.IntN(len(items))]
}

func Filter[T any](items []T, filter func(T) bool) []T {
	filtered := make([]T, 0)
	for _, item := range items {
		if filter(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

func Find[T any](items []T, match func(T) bool) (T, bool) {
	for _, item := range items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func Map[T any, U any](items []T, fn func(T) U) []U {
	mapped := make([]U, 0, len(items))
	for _, item := range items {
		mapped = append(mapped, fn(item))
	}
	return mapped
}
