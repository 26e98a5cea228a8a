package repository

import (
	"context"
	"math/rand"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

// SeedFakeData populates demo data: 10 users where each new user's referrer
// is the previously created one, 10 orders on random users, 10 products, and
// 3 distinct random products attached to every order. Demonstration only,
// not part of the production contract.
func (r *Repo) SeedFakeData(ctx context.Context) error {
	fake := gofakeit.New(0)

	users, err := r.GetAllUsers(ctx)
	if err != nil {
		return err
	}

	for i := 0; i < 10; i++ {
		var referrerID *int64
		if len(users) > 0 {
			id := users[len(users)-1].TelegramID
			referrerID = &id
		}
		userName := fake.Username()
		phone := fake.Phone()
		user, err := r.AddUserCombined(ctx,
			int64(fake.Number(1, 1<<31)),
			fake.Name(),
			fake.LanguageAbbreviation(),
			&userName,
			&phone,
			referrerID,
		)
		if err != nil {
			return err
		}
		users = append(users, *user)
	}

	orders := make([]int, 0, 10)
	for i := 0; i < 10; i++ {
		order, err := r.AddOrder(ctx, users[rand.Intn(len(users))].TelegramID)
		if err != nil {
			return err
		}
		orders = append(orders, order.OrderID)
	}

	products := make([]int, 0, 10)
	for i := 0; i < 10; i++ {
		description := fake.Sentence(6)
		product, err := r.AddProduct(ctx,
			fake.Word(),
			&description,
			decimal.NewFromFloat(fake.Price(1, 10000)),
		)
		if err != nil {
			return err
		}
		products = append(products, product.ProductID)
	}

	perOrder := 3
	if len(products) < perOrder {
		perOrder = len(products)
	}
	for _, orderID := range orders {
		for _, i := range rand.Perm(len(products))[:perOrder] {
			if _, err := r.AddOrderProduct(ctx, orderID, products[i], fake.Number(1, 100)); err != nil {
				return err
			}
		}
	}

	return nil
}
