/* pagination.go
 * Contains the page clamping helpers shared by every paginated list
 * Authors: Gamers Bot contributors
 */

package logic

// PageSize is fixed for the members list
const PageSize = 10

// TotalPages returns the server declared page count, or 1 when the server sent none
func TotalPages(serverTotal int) int {
	if serverTotal < 1 {
		return 1
	}
	return serverTotal
}

// ClampPage keeps a 1-based page index within [1, totalPages]
func ClampPage(page int, totalPages int) int {
	totalPages = TotalPages(totalPages)
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// NextPage and PrevPage move one page and clamp
func NextPage(page int, totalPages int) int {
	return ClampPage(page+1, totalPages)
}

func PrevPage(page int, totalPages int) int {
	return ClampPage(page-1, totalPages)
}
