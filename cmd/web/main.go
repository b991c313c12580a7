// @title           CargoMarket API
// @version         1.0
// @description     API маркетплейса грузоперевозок: объявления, офферы, чат, новости.
// @host            localhost:4000
// @BasePath        /api/v1

package main

import "cargomarket_backend/internal/app"

func main() {
	app.Run()
}
