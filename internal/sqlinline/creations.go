package sqlinline

const QCreationByID = `--sql 7f3c2e91-5b1d-4c8a-9e64-2d0b8a51c3f7
select id::text, image_url, created_at
from creations
where id::text = $1
limit 1;`
