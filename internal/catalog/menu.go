package catalog

import "eatzone/internal/domain"

func unsplash(photo string) string {
	return "https://images.unsplash.com/photo-" + photo + "?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=1080"
}

var defaultMenu = []domain.MenuItem{
	{ID: "1", Name: "Nasi Goreng Spesial", Price: 15000, Image: unsplash("1680674814945-7945d913319c"), Canteen: "Kantin Pusat", CanteenID: "canteen-1", Available: true, SellerID: "seller-1"},
	{ID: "2", Name: "Mie Ayam Bakso", Price: 12000, Image: unsplash("1680675706515-fb3eb73116d4"), Canteen: "Kantin Pusat", CanteenID: "canteen-1", Available: true, SellerID: "seller-1"},
	{ID: "3", Name: "Bakso Sapi", Price: 13000, Image: unsplash("1722239312531-486bbfd50f18"), Canteen: "Kantin Teknik", CanteenID: "canteen-2", Available: true, SellerID: "seller-2"},
	{ID: "4", Name: "Ayam Goreng Crispy", Price: 18000, Image: unsplash("1569058242253-92a9c755a0ec"), Canteen: "Kantin Teknik", CanteenID: "canteen-2", Available: true, SellerID: "seller-2"},
	{ID: "5", Name: "Sate Ayam", Price: 16000, Image: unsplash("1703946908870-200ef3067952"), Canteen: "Kantin FEB", CanteenID: "canteen-3", Available: true, SellerID: "seller-3"},
	{ID: "6", Name: "Gado-Gado", Price: 10000, Image: unsplash("1707269561481-a4a0370a980a"), Canteen: "Kantin FEB", CanteenID: "canteen-3", Available: true, SellerID: "seller-3"},
}
